package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConflict marks a write that lost a race against a concurrent
	// transaction (duplicate key, deadlock, lock timeout, busy database).
	// Retrying the whole transaction is safe.
	ErrConflict = errors.New("conflicting concurrent write")
	// ErrTransient marks a connectivity failure.  Nothing was committed.
	ErrTransient = errors.New("store unavailable")
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlTooManyConns    = 1040
	mysqlServerShutdown  = 1053
)

// Classify wraps driver errors with ErrConflict or ErrTransient so that
// callers can branch with errors.Is.  Other errors are returned as-is.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrConflict) || errors.Is(err, ErrTransient) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch {
	case isConflict(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case isTransient(err):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

// IsConflict reports whether err is a retryable write conflict.
func IsConflict(err error) bool { return errors.Is(Classify(err), ErrConflict) }

// IsTransient reports whether err is a connectivity failure.
func IsTransient(err error) bool { return errors.Is(Classify(err), ErrTransient) }

func isConflict(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlDeadlock, mysqlLockWaitTimeout:
			return true
		}
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		switch code & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended result codes may be off; fall back to the message
			return strings.Contains(se.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlTooManyConns || me.Number == mysqlServerShutdown
	}
	var ne net.Error
	return errors.As(err, &ne)
}
