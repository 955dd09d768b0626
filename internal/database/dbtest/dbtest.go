// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database"
)

// New returns a migrated SQLite database stored in a temporary
// directory.  The database is closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "cinema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}
