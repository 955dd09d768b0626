// Package repository holds the SQL repositories behind the catalog and
// the booking manager.  Missing rows surface as ErrNotFound so higher
// layers never look at driver errors; write conflicts are classified by
// the database package.
package repository

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a lookup by key yields no rows.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
