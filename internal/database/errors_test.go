package database_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
)

func TestClassify_MySQLNumbers(t *testing.T) {
	tests := []struct {
		number    uint16
		conflict  bool
		transient bool
	}{
		{1062, true, false},
		{1213, true, false},
		{1205, true, false},
		{1040, false, true},
		{1053, false, true},
		{1146, false, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.number), func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: tt.number, Message: "x"})
			assert.Equal(t, tt.conflict, database.IsConflict(err))
			assert.Equal(t, tt.transient, database.IsTransient(err))

			var me *mysql.MySQLError
			assert.ErrorAs(t, database.Classify(err), &me, "driver error stays reachable")
		})
	}
}

func TestClassify_ConnectionErrors(t *testing.T) {
	assert.True(t, database.IsTransient(driver.ErrBadConn))
	assert.True(t, database.IsTransient(mysql.ErrInvalidConn))
	assert.False(t, database.IsConflict(driver.ErrBadConn))
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, database.Classify(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, database.Classify(plain))

	assert.ErrorIs(t, database.Classify(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.False(t, database.IsConflict(context.Canceled))

	once := database.Classify(&mysql.MySQLError{Number: 1062})
	assert.Equal(t, once, database.Classify(once), "classifying twice is a no-op")
}

func TestClassify_SQLiteUniqueViolation(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO movies (id, name, slug, release_date) VALUES (1, 'A', 'a', '2024-01-01')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO movies (id, name, slug, release_date) VALUES (2, 'B', 'a', '2024-01-01')`)
	require.Error(t, err)
	assert.True(t, database.IsConflict(err), "duplicate slug: %v", err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestSchema_SeatTierMustBelongToSeatRoom(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	r1 := dbtest.Seed(t, db, dbtest.Room{
		Name:  "R1",
		Tiers: []dbtest.Tier{{Name: "NORMAL", Type: "fixed", Value: 200}},
		Seats: [][2]string{{"S1", "NORMAL"}},
	})
	r2 := dbtest.Seed(t, db, dbtest.Room{
		Name:  "R2",
		Tiers: []dbtest.Tier{{Name: "PREMIUM", Type: "fixed", Value: 900}},
	})

	_, err := db.ExecContext(ctx,
		`INSERT INTO seats (room_id, number, price_tier_id) VALUES (?, ?, ?)`, r1.RoomID, "S2", r2.Tiers["PREMIUM"])
	assert.Error(t, err, "a seat cannot use another room's tier")

	_, err = db.ExecContext(ctx,
		`UPDATE seats SET price_tier_id = ? WHERE id = ?`, r2.Tiers["PREMIUM"], r1.Seats["S1"])
	assert.Error(t, err, "an existing seat cannot move to another room's tier")

	_, err = db.ExecContext(ctx,
		`INSERT INTO seats (room_id, number, price_tier_id) VALUES (?, ?, ?)`, r2.RoomID, "P1", r2.Tiers["PREMIUM"])
	assert.NoError(t, err)
}
