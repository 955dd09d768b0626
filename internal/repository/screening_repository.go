// Package repository contains data access logic for screening operations.
// A Screening is one scheduled showing of a movie in a room.  Times are
// stored in UTC with second precision.
package repository

import (
	"context" // context for controlling query lifetime
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const screeningColumns = `id, movie_id, cinema_id, room_id, date_time, base_price, translation, resolution`

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
	db sqlx.ExtContext
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db sqlx.ExtContext) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ScreeningRepo) WithTx(tx *sqlx.Tx) *ScreeningRepo { return &ScreeningRepo{db: tx} }

// Create inserts a new screening and registers it in screening_rooms.
// The generated ID is assigned back to s.  Run it inside a transaction
// so that both rows are written together.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) error {
	s.DateTime = s.DateTime.UTC().Truncate(time.Second)
	const q = `INSERT INTO screenings (movie_id, cinema_id, room_id, date_time, base_price, translation, resolution)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.CinemaID, s.RoomID, s.DateTime, s.BasePrice, s.Translation, s.Resolution)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	_, err = r.db.ExecContext(ctx, `INSERT INTO screening_rooms (screening_id, room_id) VALUES (?, ?)`, s.ID, s.RoomID)
	return err
}

// GetByID retrieves a screening by its ID.  It returns ErrNotFound if
// there is no matching row.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
	var s model.Screening
	if err := sqlx.GetContext(ctx, r.db, &s, `SELECT `+screeningColumns+` FROM screenings WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	s.DateTime = s.DateTime.UTC()
	return &s, nil
}

// ListByRoom returns the screenings of a room in chronological order.
func (r *ScreeningRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Screening, error) {
	var out []model.Screening
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+screeningColumns+` FROM screenings WHERE room_id = ? ORDER BY date_time, id`, roomID)
	return out, err
}
