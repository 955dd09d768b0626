package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func TestExplorer_Upcoming(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC)
	fx := dbtest.Seed(t, db, dbtest.Room{
		Name:      "R1",
		Tiers:     []dbtest.Tier{{Name: "NORMAL", Type: "fixed", Value: 200}, {Name: "VIP", Type: "percentage", Value: 50}},
		Seats:     [][2]string{{"S1", "NORMAL"}, {"S2", "VIP"}},
		BasePrice: 1000,
		StartsAt:  start,
	})
	soldOut := dbtest.AddScreening(t, db, fx, start.Add(2*time.Hour), 1000)
	later := dbtest.AddScreening(t, db, fx, start.Add(4*time.Hour), 800)
	dbtest.AddScreening(t, db, fx, start.Add(72*time.Hour), 800)

	_, err := db.ExecContext(ctx, `INSERT INTO bookings (id, reference, user_ref, screening_id, total_amount, created_at) VALUES (900, 'r', 'u', ?, 0, ?)`, soldOut, time.Now().UTC())
	require.NoError(t, err)
	for _, seat := range []uint64{fx.Seats["S1"], fx.Seats["S2"]} {
		_, err = db.ExecContext(ctx, `INSERT INTO seat_bookings (booking_id, screening_id, seat_id, price) VALUES (900, ?, ?, 0)`, soldOut, seat)
		require.NoError(t, err)
	}

	got, err := catalog.NewExplorer(db, pricing.Engine{}).Upcoming(ctx, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fx.MovieID, got[0].MovieID)

	screenings := got[0].Screenings
	require.Len(t, screenings, 2, "sold out screening is hidden")
	assert.Equal(t, fx.ScreeningID, screenings[0].ID)
	assert.Equal(t, later, screenings[1].ID)
	assert.Equal(t, 2, screenings[0].FreeSeats)
	assert.Equal(t, []catalog.TierPrice{
		{TierID: fx.Tiers["NORMAL"], Name: "NORMAL", Price: 1200},
		{TierID: fx.Tiers["VIP"], Name: "VIP", Price: 1500},
	}, screenings[0].Prices)
	assert.Equal(t, int64(1000), screenings[1].Prices[0].Price)
	assert.Equal(t, int64(1200), screenings[1].Prices[1].Price)
}

func TestExplorer_InvalidWindow(t *testing.T) {
	db := dbtest.New(t)
	now := time.Now()
	_, err := catalog.NewExplorer(db, pricing.Engine{}).Upcoming(context.Background(), now, now)
	assert.ErrorIs(t, err, catalog.ErrInvalidWindow)
}

func TestStore_NotFound(t *testing.T) {
	db := dbtest.New(t)
	store := catalog.NewStore(db)
	ctx := context.Background()

	_, err := store.GetScreening(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.GetPriceTier(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.GetSeat(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.GetRoom(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	seats, err := store.GetRoomSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, seats)
}
