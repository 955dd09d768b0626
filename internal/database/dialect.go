package database

import "database/sql"

// Dialect names the SQL flavour of a connection.  Queries are written
// with `?` placeholders, which both supported drivers accept.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// ForUpdate returns the row locking suffix for SELECTs inside a write
// transaction.  SQLite already holds the database write lock for the
// whole transaction and has no such clause.
func (d Dialect) ForUpdate() string {
	if d == MySQL {
		return " FOR UPDATE"
	}
	return ""
}

// TxOptions returns the options used to begin a transaction.  Writes
// run at READ COMMITTED on MySQL: the re-check locks existing
// seat_bookings rows and the (screening_id, seat_id) unique key settles
// races between inserts.  Reads use a REPEATABLE READ snapshot so a
// seat list and its bookings are observed at the same point in time.
func (d Dialect) TxOptions(readOnly bool) *sql.TxOptions {
	if d != MySQL {
		return nil
	}
	if readOnly {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}
