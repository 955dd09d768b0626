// Package catalog is the read-only view of the cinema layout used by the
// booking core: screenings, rooms, seats and price tiers.  It also builds
// the category tree and the movie exploration listing.
package catalog

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Catalog supplies screening and room metadata.  Lookups of a missing
// row return an error wrapping repository.ErrNotFound.
type Catalog interface {
	GetScreening(ctx context.Context, id uint64) (*model.Screening, error)
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	GetRoomSeats(ctx context.Context, roomID uint64) ([]model.Seat, error)
	GetSeat(ctx context.Context, id uint64) (*model.Seat, error)
	GetPriceTier(ctx context.Context, id uint64) (*model.RoomPriceTier, error)
}

// Store implements Catalog on top of the SQL repositories.
type Store struct {
	screenings *repository.ScreeningRepo
	rooms      *repository.RoomRepo
	seats      *repository.SeatRepo
}

var _ Catalog = (*Store)(nil)

// NewStore returns a Store reading through db, which may be a pool or
// a transaction.
func NewStore(db sqlx.ExtContext) *Store {
	return &Store{
		screenings: repository.NewScreeningRepo(db),
		rooms:      repository.NewRoomRepo(db),
		seats:      repository.NewSeatRepo(db),
	}
}

// WithTx returns a Store whose reads run inside tx.
func (s *Store) WithTx(tx *sqlx.Tx) *Store {
	return &Store{
		screenings: s.screenings.WithTx(tx),
		rooms:      s.rooms.WithTx(tx),
		seats:      s.seats.WithTx(tx),
	}
}

func (s *Store) GetScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	return s.screenings.GetByID(ctx, id)
}

func (s *Store) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

// GetRoomSeats returns the seats of a room ordered by ID.
func (s *Store) GetRoomSeats(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	return s.seats.ListByRoom(ctx, roomID)
}

func (s *Store) GetSeat(ctx context.Context, id uint64) (*model.Seat, error) {
	return s.seats.GetByID(ctx, id)
}

func (s *Store) GetPriceTier(ctx context.Context, id uint64) (*model.RoomPriceTier, error) {
	return s.rooms.GetTier(ctx, id)
}

// RoomTiers returns the price tiers of a room keyed by ID.
func (s *Store) RoomTiers(ctx context.Context, roomID uint64) (map[uint64]model.RoomPriceTier, error) {
	tiers, err := s.rooms.ListTiers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]model.RoomPriceTier, len(tiers))
	for _, t := range tiers {
		out[t.ID] = t
	}
	return out, nil
}
