package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ScreeningSearchRow is one screening in a time window together with
// its movie, its room and the seat occupancy of the room.
type ScreeningSearchRow struct {
	ScreeningID uint64    `db:"screening_id"`
	MovieID     uint64    `db:"movie_id"`
	MovieName   string    `db:"movie_name"`
	MovieSlug   string    `db:"movie_slug"`
	CinemaID    uint64    `db:"cinema_id"`
	RoomID      uint64    `db:"room_id"`
	RoomName    string    `db:"room_name"`
	DateTime    time.Time `db:"date_time"`
	BasePrice   int64     `db:"base_price"`
	Translation string    `db:"translation"`
	Resolution  string    `db:"resolution"`
	TotalSeats  int       `db:"total_seats"`
	BookedSeats int       `db:"booked_seats"`
}

// SearchWindow returns the screenings starting in [from, to) ordered by
// movie and start time.  Seat counts are computed in the same statement.
func (r *ScreeningRepo) SearchWindow(ctx context.Context, from, to time.Time) ([]ScreeningSearchRow, error) {
	const q = `SELECT
			s.id          AS screening_id,
			m.id          AS movie_id,
			m.name        AS movie_name,
			m.slug        AS movie_slug,
			s.cinema_id   AS cinema_id,
			r.id          AS room_id,
			r.name        AS room_name,
			s.date_time   AS date_time,
			s.base_price  AS base_price,
			s.translation AS translation,
			s.resolution  AS resolution,
			(SELECT COUNT(*) FROM seats st WHERE st.room_id = s.room_id)               AS total_seats,
			(SELECT COUNT(*) FROM seat_bookings sb WHERE sb.screening_id = s.id)       AS booked_seats
		FROM screenings s
		JOIN movies m ON m.id = s.movie_id
		JOIN rooms r  ON r.id = s.room_id
		WHERE s.date_time >= ? AND s.date_time < ?
		ORDER BY m.id, s.date_time, s.id`
	var rows []ScreeningSearchRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, from.UTC().Truncate(time.Second), to.UTC().Truncate(time.Second)); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].DateTime = rows[i].DateTime.UTC()
	}
	return rows, nil
}
