package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// ErrInvalidWindow is returned when the exploration window is empty.
var ErrInvalidWindow = errors.New("window end must be after its start")

// TierPrice is the price of one seat of a tier at a screening.
type TierPrice struct {
	TierID uint64 `json:"tier_id"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
}

// ScreeningSummary is a screening with seats left to sell.
type ScreeningSummary struct {
	ID          uint64      `json:"id"`
	CinemaID    uint64      `json:"cinema_id"`
	RoomID      uint64      `json:"room_id"`
	RoomName    string      `json:"room_name"`
	DateTime    time.Time   `json:"date_time"`
	Translation string      `json:"translation"`
	Resolution  string      `json:"resolution"`
	BasePrice   int64       `json:"base_price"`
	FreeSeats   int         `json:"free_seats"`
	Prices      []TierPrice `json:"prices"`
}

// MovieScreenings groups the upcoming screenings of one movie.
type MovieScreenings struct {
	MovieID    uint64             `json:"movie_id"`
	Name       string             `json:"name"`
	Slug       string             `json:"slug"`
	Screenings []ScreeningSummary `json:"screenings"`
}

// Explorer lists what can still be booked.
type Explorer struct {
	screenings *repository.ScreeningRepo
	categories *repository.CategoryRepo
	store      *Store
	engine     pricing.Engine
}

// NewExplorer returns an Explorer reading through db.
func NewExplorer(db sqlx.ExtContext, engine pricing.Engine) *Explorer {
	return &Explorer{
		screenings: repository.NewScreeningRepo(db),
		categories: repository.NewCategoryRepo(db),
		store:      NewStore(db),
		engine:     engine,
	}
}

// Upcoming returns the screenings starting in [from, to) grouped by
// movie.  Sold out screenings are left out, and so are movies left
// without screenings.  Each screening carries the seat price of every
// tier of its room.
func (e *Explorer) Upcoming(ctx context.Context, from, to time.Time) ([]MovieScreenings, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	rows, err := e.screenings.SearchWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("search screenings: %w", err)
	}

	tiersByRoom := map[uint64][]model.RoomPriceTier{}
	out := []MovieScreenings{}
	for _, row := range rows {
		free := row.TotalSeats - row.BookedSeats
		if free <= 0 {
			continue
		}
		tiers, ok := tiersByRoom[row.RoomID]
		if !ok {
			byID, err := e.store.RoomTiers(ctx, row.RoomID)
			if err != nil {
				return nil, fmt.Errorf("room %d tiers: %w", row.RoomID, err)
			}
			for _, t := range byID {
				tiers = append(tiers, t)
			}
			sort.Slice(tiers, func(i, j int) bool { return tiers[i].ID < tiers[j].ID })
			tiersByRoom[row.RoomID] = tiers
		}

		prices := make([]TierPrice, 0, len(tiers))
		for _, t := range tiers {
			p, err := e.engine.ComputePrice(row.BasePrice, t)
			if err != nil {
				return nil, fmt.Errorf("screening %d tier %d: %w", row.ScreeningID, t.ID, err)
			}
			prices = append(prices, TierPrice{TierID: t.ID, Name: t.Name, Price: p})
		}

		if n := len(out); n == 0 || out[n-1].MovieID != row.MovieID {
			out = append(out, MovieScreenings{MovieID: row.MovieID, Name: row.MovieName, Slug: row.MovieSlug})
		}
		last := &out[len(out)-1]
		last.Screenings = append(last.Screenings, ScreeningSummary{
			ID:          row.ScreeningID,
			CinemaID:    row.CinemaID,
			RoomID:      row.RoomID,
			RoomName:    row.RoomName,
			DateTime:    row.DateTime,
			Translation: row.Translation,
			Resolution:  row.Resolution,
			BasePrice:   row.BasePrice,
			FreeSeats:   free,
			Prices:      prices,
		})
	}
	return out, nil
}

// Categories returns the category tree.
func (e *Explorer) Categories(ctx context.Context) ([]*CategoryNode, error) {
	return CategoryTree(ctx, e.categories)
}
