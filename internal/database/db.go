package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/cinema-booking/internal/config"
)

// DB is a connection pool together with the SQL dialect it speaks.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Open connects to the database selected by cfg.DBDriver and verifies
// the connection.
func Open(cfg config.Config) (*DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "mysql":
		return OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, Classify(err)
	}
	return &DB{DB: db, Dialect: MySQL}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file.  SQLite
// admits a single writer, so the pool is limited to one connection and
// every transaction takes the write lock up front.
func OpenSQLite(path string) (*DB, error) {
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db, Dialect: SQLite}, nil
}

func ping(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
