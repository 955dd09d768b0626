// Package booking reserves seats for screenings.  The database is the
// only arbiter between concurrent requests: a seat is booked for a
// screening by at most one seat_bookings row, and every booking either
// takes all of its seats or none of them.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// CreateBookingRequest names a screening, the seats wanted together and
// the user booking them.
type CreateBookingRequest struct {
	ScreeningID uint64
	SeatIDs     []uint64
	UserRef     string
}

// Seat is one booked seat with the price charged for it.
type Seat struct {
	SeatID uint64 `json:"seat_id"`
	Number string `json:"number"`
	Tier   string `json:"tier"`
	Price  int64  `json:"price"`
}

// Booking is a booking with its seat and price breakdown.
type Booking struct {
	model.Booking
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	Seats    []Seat `json:"seats"`
}

// Manager creates and cancels bookings.
type Manager struct {
	db       *database.DB
	catalog  catalog.Catalog
	bookings *repository.BookingRepo
	outbox   *repository.OutboxRepo
	engine   pricing.Engine
	retry    database.RetryPolicy
	log      logrus.FieldLogger
	now      func() time.Time

	// inTx runs a write transaction; db.InTx outside tests.
	inTx func(ctx context.Context, readOnly bool, fn func(*sqlx.Tx) error) error
}

// NewManager returns a Manager writing to db and reading the layout
// through cat.
func NewManager(db *database.DB, cat catalog.Catalog, engine pricing.Engine, retry database.RetryPolicy, log logrus.FieldLogger) *Manager {
	return &Manager{
		db:       db,
		catalog:  cat,
		bookings: repository.NewBookingRepo(db, db.Dialect),
		outbox:   repository.NewOutboxRepo(db),
		engine:   engine,
		retry:    retry,
		log:      log,
		now:      time.Now,
		inTx:     db.InTx,
	}
}

// pricedSeat is a requested seat resolved against the catalog.
type pricedSeat struct {
	seat  model.Seat
	tier  model.RoomPriceTier
	price int64
}

// CreateBooking books every requested seat for the screening or none of
// them.  Lost races are retried with the original seat set until the
// retry policy is exhausted; a seat found booked inside the transaction
// fails the request at once with *SeatUnavailableError.
func (m *Manager) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	log := m.log.WithFields(logrus.Fields{
		"screening_id": req.ScreeningID,
		"seat_ids":     req.SeatIDs,
		"user_ref":     req.UserRef,
	})

	screening, err := m.catalog.GetScreening(ctx, req.ScreeningID)
	if err != nil {
		return nil, lookupErr(req, fmt.Errorf("screening %d: %w", req.ScreeningID, err))
	}
	room, err := m.catalog.GetRoom(ctx, screening.RoomID)
	if err != nil {
		return nil, lookupErr(req, fmt.Errorf("room %d: %w", screening.RoomID, err))
	}
	seats, err := m.priceSeats(ctx, screening, req.SeatIDs)
	if err != nil {
		return nil, lookupErr(req, err)
	}

	b := &Booking{
		Booking: model.Booking{
			Reference:   uuid.NewString(),
			UserRef:     req.UserRef,
			ScreeningID: screening.ID,
			CreatedAt:   m.now().UTC().Truncate(time.Microsecond),
		},
		RoomID:   room.ID,
		RoomName: room.Name,
		Seats:    make([]Seat, 0, len(seats)),
	}
	for _, s := range seats {
		b.TotalAmount += s.price
		b.Seats = append(b.Seats, Seat{SeatID: s.seat.ID, Number: s.seat.Number, Tier: s.tier.Name, Price: s.price})
	}

	err = database.Retry(ctx, m.retry, func(attempt int) error {
		if attempt > 1 {
			log.WithField("attempt", attempt).Debug("retrying booking after write conflict")
		}
		return m.inTx(ctx, false, func(tx *sqlx.Tx) error {
			return m.insertBooking(ctx, tx, screening, b)
		})
	})

	var unavailable *SeatUnavailableError
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{"booking_id": b.ID, "total": b.TotalAmount}).Info("booking confirmed")
		return b, nil
	case errors.As(err, &unavailable):
		log.WithField("taken", unavailable.SeatIDs).Info("booking rejected: seats taken")
		return nil, unavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.WithError(err).Warn("booking abandoned: deadline")
		return nil, &SeatUnavailableError{SeatIDs: slices.Clone(req.SeatIDs), Timeout: true, Err: err}
	case errors.Is(err, database.ErrConflict):
		log.WithError(err).Warn("booking rejected: retries exhausted")
		return nil, &SeatUnavailableError{SeatIDs: slices.Clone(req.SeatIDs), Err: err}
	}
	log.WithError(err).Error("booking failed")
	return nil, storeErr("create booking", err)
}

// lookupErr maps a failed catalog lookup.  A deadline that ends the
// request before the transaction even starts is still a timeout.
func lookupErr(req CreateBookingRequest, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &SeatUnavailableError{SeatIDs: slices.Clone(req.SeatIDs), Timeout: true, Err: err}
	}
	return storeErr("create booking", err)
}

// insertBooking re-checks the requested seats and writes the booking,
// its seats and the confirmation event.  b.ID and the seat rows are set
// afresh on every attempt.
func (m *Manager) insertBooking(ctx context.Context, tx *sqlx.Tx, screening *model.Screening, b *Booking) error {
	bookings := m.bookings.WithTx(tx)

	ids := make([]uint64, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.SeatID
	}
	taken, err := bookings.LockBookedSeats(ctx, screening.ID, ids)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &SeatUnavailableError{SeatIDs: taken}
	}

	if err := bookings.Create(ctx, &b.Booking); err != nil {
		return err
	}
	rows := make([]model.SeatBooking, len(b.Seats))
	for i, s := range b.Seats {
		rows[i] = model.SeatBooking{BookingID: b.ID, ScreeningID: screening.ID, SeatID: s.SeatID, Price: s.Price}
	}
	if err := bookings.CreateSeatsBulk(ctx, rows); err != nil {
		return err
	}
	return m.emit(ctx, tx, queue.KindBookingConfirmed, screening, b)
}

// priceSeats resolves the requested seats against the screening's room
// and prices each of them.  The result follows the order of ids.
func (m *Manager) priceSeats(ctx context.Context, screening *model.Screening, ids []uint64) ([]pricedSeat, error) {
	roomSeats, err := m.catalog.GetRoomSeats(ctx, screening.RoomID)
	if err != nil {
		return nil, fmt.Errorf("room %d seats: %w", screening.RoomID, err)
	}
	inRoom := make(map[uint64]model.Seat, len(roomSeats))
	for _, s := range roomSeats {
		inRoom[s.ID] = s
	}

	tiers := map[uint64]*model.RoomPriceTier{}
	out := make([]pricedSeat, 0, len(ids))
	for _, id := range ids {
		seat, ok := inRoom[id]
		if !ok {
			other, err := m.catalog.GetSeat(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("seat %d: %w", id, err)
			}
			return nil, fmt.Errorf("%w: seat %d is in room %d, screening %d is in room %d",
				ErrInvalidRequest, id, other.RoomID, screening.ID, screening.RoomID)
		}
		tier, ok := tiers[seat.PriceTierID]
		if !ok {
			tier, err = m.catalog.GetPriceTier(ctx, seat.PriceTierID)
			if err != nil {
				return nil, fmt.Errorf("seat %d tier %d: %w", id, seat.PriceTierID, err)
			}
			if tier.RoomID != screening.RoomID {
				return nil, fmt.Errorf("%w: seat %d uses tier %d of room %d, screening %d is in room %d",
					pricing.ErrInvalidTier, id, tier.ID, tier.RoomID, screening.ID, screening.RoomID)
			}
			tiers[seat.PriceTierID] = tier
		}
		price, err := m.engine.ComputePrice(screening.BasePrice, *tier)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", id, err)
		}
		out = append(out, pricedSeat{seat: seat, tier: *tier, price: price})
	}
	return out, nil
}

// CancelBooking deletes a booking and its seats in one transaction.
// The seats are free for other bookings as soon as it returns.
func (m *Manager) CancelBooking(ctx context.Context, bookingID uint64) error {
	log := m.log.WithField("booking_id", bookingID)
	err := database.Retry(ctx, m.retry, func(int) error {
		return m.inTx(ctx, false, func(tx *sqlx.Tx) error {
			bookings := m.bookings.WithTx(tx)
			found, err := bookings.GetByIDForUpdate(ctx, bookingID)
			if err != nil {
				return fmt.Errorf("booking %d: %w", bookingID, err)
			}
			seats, err := bookings.SeatsOf(ctx, bookingID)
			if err != nil {
				return err
			}
			screening, err := catalog.NewStore(tx).GetScreening(ctx, found.ScreeningID)
			if err != nil {
				return fmt.Errorf("screening %d: %w", found.ScreeningID, err)
			}
			if err := bookings.Delete(ctx, bookingID); err != nil {
				return err
			}
			b := &Booking{Booking: *found, RoomID: screening.RoomID, Seats: toSeats(seats)}
			return m.emit(ctx, tx, queue.KindBookingCancelled, screening, b)
		})
	})
	switch {
	case err == nil:
		log.Info("booking cancelled")
		return nil
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, database.ErrConflict):
		// a conflict that outlived the retries is load, not a verdict
		return fmt.Errorf("cancel booking: %w: %w", ErrStoreUnavailable, err)
	}
	log.WithError(err).Error("cancel failed")
	return storeErr("cancel booking", err)
}

// GetBooking returns a booking with its seats.
func (m *Manager) GetBooking(ctx context.Context, bookingID uint64) (*Booking, error) {
	var out *Booking
	err := m.db.InTx(ctx, true, func(tx *sqlx.Tx) error {
		list, err := m.load(ctx, tx, func(r *repository.BookingRepo) ([]model.Booking, error) {
			b, err := r.GetByID(ctx, bookingID)
			if err != nil {
				return nil, fmt.Errorf("booking %d: %w", bookingID, err)
			}
			return []model.Booking{*b}, nil
		})
		if err != nil {
			return err
		}
		out = &list[0]
		return nil
	})
	if err != nil {
		return nil, storeErr("get booking", err)
	}
	return out, nil
}

// ListBookingsByUser returns the bookings of a user, newest first.
func (m *Manager) ListBookingsByUser(ctx context.Context, userRef string) ([]Booking, error) {
	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return nil, fmt.Errorf("%w: user reference is required", ErrInvalidRequest)
	}
	var out []Booking
	err := m.db.InTx(ctx, true, func(tx *sqlx.Tx) error {
		var err error
		out, err = m.load(ctx, tx, func(r *repository.BookingRepo) ([]model.Booking, error) {
			return r.ListByUser(ctx, userRef)
		})
		return err
	})
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return out, nil
}

// load fetches bookings with find and attaches their seats and rooms.
func (m *Manager) load(ctx context.Context, tx *sqlx.Tx, find func(*repository.BookingRepo) ([]model.Booking, error)) ([]Booking, error) {
	bookings := m.bookings.WithTx(tx)
	rows, err := find(bookings)
	if err != nil {
		return nil, err
	}
	out := make([]Booking, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uint64, len(rows))
	for i, b := range rows {
		ids[i] = b.ID
		out[i] = Booking{Booking: b, Seats: []Seat{}}
	}
	seats, err := bookings.SeatsOf(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byBooking := map[uint64][]repository.BookedSeat{}
	for _, s := range seats {
		byBooking[s.BookingID] = append(byBooking[s.BookingID], s)
	}

	store := catalog.NewStore(tx)
	rooms := map[uint64]*model.Room{}
	for i := range out {
		out[i].Seats = toSeats(byBooking[out[i].ID])
		screening, err := store.GetScreening(ctx, out[i].ScreeningID)
		if err != nil {
			return nil, fmt.Errorf("screening %d: %w", out[i].ScreeningID, err)
		}
		room, ok := rooms[screening.RoomID]
		if !ok {
			if room, err = store.GetRoom(ctx, screening.RoomID); err != nil {
				return nil, fmt.Errorf("room %d: %w", screening.RoomID, err)
			}
			rooms[screening.RoomID] = room
		}
		out[i].RoomID = room.ID
		out[i].RoomName = room.Name
	}
	return out, nil
}

// emit writes a booking event to the outbox inside tx.
func (m *Manager) emit(ctx context.Context, tx *sqlx.Tx, kind string, screening *model.Screening, b *Booking) error {
	ev := queue.BookingEvent{
		EventID:     uuid.NewString(),
		Kind:        kind,
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserRef:     b.UserRef,
		ScreeningID: screening.ID,
		MovieID:     screening.MovieID,
		CinemaID:    screening.CinemaID,
		RoomID:      screening.RoomID,
		StartsAt:    screening.DateTime,
		Seats:       make([]queue.EventSeat, len(b.Seats)),
		TotalAmount: b.TotalAmount,
		OccurredAt:  m.now().UTC(),
	}
	for i, s := range b.Seats {
		ev.Seats[i] = queue.EventSeat{SeatID: s.SeatID, Number: s.Number, Price: s.Price}
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	return m.outbox.WithTx(tx).Insert(ctx, &model.BookingEvent{
		EventID:   ev.EventID,
		Kind:      kind,
		Payload:   string(payload),
		CreatedAt: ev.OccurredAt,
	})
}

func toSeats(rows []repository.BookedSeat) []Seat {
	out := make([]Seat, len(rows))
	for i, r := range rows {
		out[i] = Seat{SeatID: r.SeatID, Number: r.SeatNumber, Tier: r.TierName, Price: r.Price}
	}
	return out
}

// validate rejects malformed requests before any lookup.
func validate(req CreateBookingRequest) error {
	if strings.TrimSpace(req.UserRef) == "" {
		return fmt.Errorf("%w: user reference is required", ErrInvalidRequest)
	}
	if req.ScreeningID == 0 {
		return fmt.Errorf("%w: screening id is required", ErrInvalidRequest)
	}
	if len(req.SeatIDs) == 0 {
		return fmt.Errorf("%w: at least one seat is required", ErrInvalidRequest)
	}
	seen := make(map[uint64]struct{}, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		if id == 0 {
			return fmt.Errorf("%w: seat id 0", ErrInvalidRequest)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: seat %d requested twice", ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
