package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database"
)

// Tier describes a price tier created by Seed.
type Tier struct {
	Name  string
	Type  string // "fixed", "percentage" or anything else to exercise validation
	Value int64
}

// Room describes the layout created by Seed: seat number -> tier name.
type Room struct {
	Name      string
	Tiers     []Tier
	Seats     [][2]string
	BasePrice int64
	StartsAt  time.Time
}

// Fixture holds the IDs created by Seed.
type Fixture struct {
	CinemaID    uint64
	MovieID     uint64
	RoomID      uint64
	ScreeningID uint64
	Tiers       map[string]uint64
	Seats       map[string]uint64
}

// Seed creates a city, a cinema, a movie, one room with the given tiers
// and seats, and one screening of the movie in that room.
func Seed(t testing.TB, db *database.DB, room Room) Fixture {
	t.Helper()
	fx := Fixture{Tiers: map[string]uint64{}, Seats: map[string]uint64{}}

	cityID := insert(t, db, `INSERT INTO cities (name) VALUES (?)`, "Tehran")
	fx.CinemaID = insert(t, db, `INSERT INTO cinemas (city_id, name) VALUES (?, ?)`, cityID, "Azadi")
	fx.MovieID = insert(t, db,
		`INSERT INTO movies (name, slug, release_date) VALUES (?, ?, ?)`,
		"Movie "+room.Name, "movie-"+room.Name+"-"+time.Now().Format("150405.000000000"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	fx.RoomID = insert(t, db, `INSERT INTO rooms (cinema_id, name) VALUES (?, ?)`, fx.CinemaID, room.Name)
	for _, tier := range room.Tiers {
		fx.Tiers[tier.Name] = insert(t, db,
			`INSERT INTO room_prices (room_id, name, adjustment_type, adjustment_value) VALUES (?, ?, ?, ?)`,
			fx.RoomID, tier.Name, tier.Type, tier.Value)
	}
	for _, seat := range room.Seats {
		tierID, ok := fx.Tiers[seat[1]]
		require.True(t, ok, "unknown tier %q", seat[1])
		fx.Seats[seat[0]] = insert(t, db,
			`INSERT INTO seats (room_id, number, price_tier_id) VALUES (?, ?, ?)`, fx.RoomID, seat[0], tierID)
	}
	fx.ScreeningID = AddScreening(t, db, fx, room.StartsAt, room.BasePrice)
	return fx
}

// AddScreening schedules another screening of the fixture movie in the
// fixture room.  A zero time means one day from now.
func AddScreening(t testing.TB, db *database.DB, fx Fixture, at time.Time, basePrice int64) uint64 {
	t.Helper()
	if at.IsZero() {
		at = time.Now().Add(24 * time.Hour)
	}
	at = at.UTC().Truncate(time.Second)
	id := insert(t, db,
		`INSERT INTO screenings (movie_id, cinema_id, room_id, date_time, base_price) VALUES (?, ?, ?, ?, ?)`,
		fx.MovieID, fx.CinemaID, fx.RoomID, at, basePrice)
	insert(t, db, `INSERT INTO screening_rooms (screening_id, room_id) VALUES (?, ?)`, id, fx.RoomID)
	return id
}

func insert(t testing.TB, db *database.DB, q string, args ...any) uint64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(), q, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}
