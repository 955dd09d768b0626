package booking

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// SeatStatus is one seat of a screening's seat map.
type SeatStatus struct {
	SeatID    uint64 `json:"seat_id"`
	Number    string `json:"number"`
	TierID    uint64 `json:"tier_id"`
	Tier      string `json:"tier"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

// SeatMap is the full seat layout of a screening with prices and
// occupancy.
type SeatMap struct {
	ScreeningID uint64       `json:"screening_id"`
	RoomID      uint64       `json:"room_id"`
	BasePrice   int64        `json:"base_price"`
	Available   int          `json:"available"`
	Seats       []SeatStatus `json:"seats"`
}

// Resolver answers which seats of a screening are free.  Each call runs
// in one read-only transaction so the seat list and the bookings come
// from the same snapshot.
type Resolver struct {
	db       *database.DB
	store    *catalog.Store
	bookings *repository.BookingRepo
	engine   pricing.Engine
}

// NewResolver returns a Resolver reading from db.
func NewResolver(db *database.DB, engine pricing.Engine) *Resolver {
	return &Resolver{
		db:       db,
		store:    catalog.NewStore(db),
		bookings: repository.NewBookingRepo(db, db.Dialect),
		engine:   engine,
	}
}

// ListAvailableSeats returns the IDs of the seats of the screening's
// room that have no booking for the screening, in ascending order.
func (r *Resolver) ListAvailableSeats(ctx context.Context, screeningID uint64) ([]uint64, error) {
	free := []uint64{}
	err := r.db.InTx(ctx, true, func(tx *sqlx.Tx) error {
		_, seats, booked, err := r.snapshot(ctx, tx, screeningID)
		if err != nil {
			return err
		}
		for _, s := range seats {
			if _, taken := booked[s.ID]; !taken {
				free = append(free, s.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("list available seats", err)
	}
	return free, nil
}

// SeatMap returns every seat of the screening's room with its tier,
// price and availability.
func (r *Resolver) SeatMap(ctx context.Context, screeningID uint64) (*SeatMap, error) {
	var out *SeatMap
	err := r.db.InTx(ctx, true, func(tx *sqlx.Tx) error {
		screening, seats, booked, err := r.snapshot(ctx, tx, screeningID)
		if err != nil {
			return err
		}
		tiers, err := r.store.WithTx(tx).RoomTiers(ctx, screening.RoomID)
		if err != nil {
			return err
		}

		out = &SeatMap{
			ScreeningID: screening.ID,
			RoomID:      screening.RoomID,
			BasePrice:   screening.BasePrice,
			Seats:       make([]SeatStatus, 0, len(seats)),
		}
		for _, s := range seats {
			tier, ok := tiers[s.PriceTierID]
			if !ok {
				return fmt.Errorf("%w: seat %d tier %d is not a tier of room %d",
					pricing.ErrInvalidTier, s.ID, s.PriceTierID, screening.RoomID)
			}
			price, err := r.engine.ComputePrice(screening.BasePrice, tier)
			if err != nil {
				return fmt.Errorf("seat %d: %w", s.ID, err)
			}
			_, taken := booked[s.ID]
			if !taken {
				out.Available++
			}
			out.Seats = append(out.Seats, SeatStatus{
				SeatID:    s.ID,
				Number:    s.Number,
				TierID:    tier.ID,
				Tier:      tier.Name,
				Price:     price,
				Available: !taken,
			})
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("seat map", err)
	}
	return out, nil
}

// snapshot reads a screening, the seats of its room and the set of its
// booked seat IDs inside tx.
func (r *Resolver) snapshot(ctx context.Context, tx *sqlx.Tx, screeningID uint64) (*model.Screening, []model.Seat, map[uint64]struct{}, error) {
	store := r.store.WithTx(tx)
	screening, err := store.GetScreening(ctx, screeningID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("screening %d: %w", screeningID, err)
	}
	seats, err := store.GetRoomSeats(ctx, screening.RoomID)
	if err != nil {
		return nil, nil, nil, err
	}
	ids, err := r.bookings.WithTx(tx).BookedSeatIDs(ctx, screeningID)
	if err != nil {
		return nil, nil, nil, err
	}
	booked := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		booked[id] = struct{}{}
	}
	return screening, seats, booked, nil
}
