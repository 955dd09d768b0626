package repository // repository defines data access for seats

import (
	"context" // context allows query cancellation and timeouts
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// SeatRepo provides methods to work with seats in the database.  The
// seat layout of a room is static: seats are created during cinema
// setup and read by every screening of the room.
type SeatRepo struct {
	db sqlx.ExtContext
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db sqlx.ExtContext) *SeatRepo {
	return &SeatRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *SeatRepo) WithTx(tx *sqlx.Tx) *SeatRepo { return &SeatRepo{db: tx} }

// Create inserts a single seat record. On success the seat's ID is populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (room_id, number, price_tier_id)
	           VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.RoomID, s.Number, s.PriceTierID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulk inserts multiple seats in a single statement.  IDs are not
// populated; read them back with ListByRoom.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var query strings.Builder
	query.WriteString(`INSERT INTO seats (room_id, number, price_tier_id) VALUES `)
	args := make([]any, 0, len(seats)*3)
	for i, seat := range seats {
		if i > 0 {
			query.WriteString(",")
		}
		query.WriteString("(?, ?, ?)")
		args = append(args, seat.RoomID, seat.Number, seat.PriceTierID)
	}
	_, err := r.db.ExecContext(ctx, query.String(), args...)
	return err
}

// ListByRoom retrieves all seats of a room ordered by ID.
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT id, room_id, number, price_tier_id
	           FROM seats
	           WHERE room_id = ?
	           ORDER BY id`
	var result []model.Seat
	if err := sqlx.SelectContext(ctx, r.db, &result, q, roomID); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByRoom returns how many seats a room has.
func (r *SeatRepo) CountByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM seats WHERE room_id = ?`, roomID)
	return n, err
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, room_id, number, price_tier_id FROM seats WHERE id = ?`
	var s model.Seat
	if err := sqlx.GetContext(ctx, r.db, &s, q, id); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
