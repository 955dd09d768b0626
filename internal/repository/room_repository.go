package repository // repository holds data access logic for domain entities

import (
	"context" // context is used to manage deadlines and cancellation

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// RoomRepo provides methods to create and retrieve rooms and their
// price tiers.
type RoomRepo struct {
	db sqlx.ExtContext // db is the connection pool or transaction
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db sqlx.ExtContext) *RoomRepo {
	return &RoomRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *RoomRepo) WithTx(tx *sqlx.Tx) *RoomRepo { return &RoomRepo{db: tx} }

// Create inserts a new room.  After insert the ID field of the room
// will be set.  Room names are unique per cinema.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO rooms (cinema_id, name) VALUES (?, ?)`, room.CinemaID, room.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID retrieves a room by its ID.  It returns ErrNotFound when no
// row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var room model.Room
	if err := sqlx.GetContext(ctx, r.db, &room, `SELECT id, cinema_id, name FROM rooms WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// ListByCinema returns the rooms of a cinema ordered by ID.
func (r *RoomRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]model.Room, error) {
	var out []model.Room
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT id, cinema_id, name FROM rooms WHERE cinema_id = ? ORDER BY id`, cinemaID)
	return out, err
}

// CreateTier inserts a price tier for a room.  The adjustment type is
// stored as given; the pricing engine rejects unknown types when a seat
// of the tier is priced.
func (r *RoomRepo) CreateTier(ctx context.Context, t *model.RoomPriceTier) error {
	const q = `INSERT INTO room_prices (room_id, name, adjustment_type, adjustment_value)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.RoomID, t.Name, string(t.AdjustmentType), t.AdjustmentValue)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetTier retrieves a price tier by ID.  It returns ErrNotFound when no
// row is found.
func (r *RoomRepo) GetTier(ctx context.Context, id uint64) (*model.RoomPriceTier, error) {
	const q = `SELECT id, room_id, name, adjustment_type, adjustment_value FROM room_prices WHERE id = ?`
	var t model.RoomPriceTier
	if err := sqlx.GetContext(ctx, r.db, &t, q, id); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListTiers returns every price tier of a room ordered by ID.
func (r *RoomRepo) ListTiers(ctx context.Context, roomID uint64) ([]model.RoomPriceTier, error) {
	const q = `SELECT id, room_id, name, adjustment_type, adjustment_value
	           FROM room_prices WHERE room_id = ? ORDER BY id`
	var out []model.RoomPriceTier
	err := sqlx.SelectContext(ctx, r.db, &out, q, roomID)
	return out, err
}
