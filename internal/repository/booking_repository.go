package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their seats.
// Seats booked under a booking are stored in the seat_bookings table,
// which carries the screening ID as well so that availability can be
// answered from that table alone.  All timestamps are stored in UTC.
type BookingRepo struct {
	db      sqlx.ExtContext
	dialect database.Dialect
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
// The dialect selects the row locking clause used by LockBookedSeats.
func NewBookingRepo(db sqlx.ExtContext, dialect database.Dialect) *BookingRepo {
	return &BookingRepo{db: db, dialect: dialect}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BookingRepo) WithTx(tx *sqlx.Tx) *BookingRepo {
	return &BookingRepo{db: tx, dialect: r.dialect}
}

// BookedSeat is a seat_bookings row joined with the seat label and the
// price tier name, as printed on a ticket.
type BookedSeat struct {
	model.SeatBooking
	SeatNumber string `db:"seat_number" json:"seat_number"`
	TierName   string `db:"tier_name" json:"tier"`
}

// Create inserts a new booking.  It populates the generated ID on the
// provided record.  Run it inside the transaction that also inserts the
// seat rows.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.CreatedAt = b.CreatedAt.UTC().Truncate(time.Microsecond)
	const q = `INSERT INTO bookings (reference, user_ref, screening_id, total_amount, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.Reference, b.UserRef, b.ScreeningID, b.TotalAmount, b.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateSeatsBulk inserts multiple seat_bookings rows in a single
// statement.  The caller must supply the booking ID and the booking's
// screening ID in each record.  A seat already booked for the screening
// violates the (screening_id, seat_id) unique key and fails the whole
// statement.  Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) CreateSeatsBulk(ctx context.Context, seats []model.SeatBooking) error {
	if len(seats) == 0 {
		return nil
	}
	var query strings.Builder
	query.WriteString(`INSERT INTO seat_bookings (booking_id, screening_id, seat_id, price) VALUES `)
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query.WriteString(",")
		}
		query.WriteString("(?, ?, ?, ?)")
		args = append(args, s.BookingID, s.ScreeningID, s.SeatID, s.Price)
	}
	_, err := r.db.ExecContext(ctx, query.String(), args...)
	return err
}

// BookedSeatIDs returns the IDs of every booked seat of a screening in
// ascending order.
func (r *BookingRepo) BookedSeatIDs(ctx context.Context, screeningID uint64) ([]uint64, error) {
	var ids []uint64
	err := sqlx.SelectContext(ctx, r.db, &ids,
		`SELECT seat_id FROM seat_bookings WHERE screening_id = ? ORDER BY seat_id`, screeningID)
	return ids, err
}

// LockBookedSeats returns which of seatIDs are already booked for the
// screening.  On MySQL the matching rows are locked until the
// transaction ends so a concurrent cancellation cannot slip in between
// the check and the insert.
func (r *BookingRepo) LockBookedSeats(ctx context.Context, screeningID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT seat_id FROM seat_bookings WHERE screening_id = ? AND seat_id IN (?) ORDER BY seat_id`+r.dialect.ForUpdate(),
		screeningID, seatIDs)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	err = sqlx.SelectContext(ctx, r.db, &ids, r.db.Rebind(query), args...)
	return ids, err
}

// GetByID returns a single booking.  It returns ErrNotFound when the
// booking does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, user_ref, screening_id, total_amount, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	if err := sqlx.GetContext(ctx, r.db, &b, q, id); err != nil {
		return nil, notFound(err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// GetByIDForUpdate is GetByID with the booking row locked on MySQL.
func (r *BookingRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	q := `SELECT id, reference, user_ref, screening_id, total_amount, created_at FROM bookings WHERE id = ?` + r.dialect.ForUpdate()
	var b model.Booking
	if err := sqlx.GetContext(ctx, r.db, &b, q, id); err != nil {
		return nil, notFound(err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// ListByUser returns all bookings of a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userRef string) ([]model.Booking, error) {
	const q = `SELECT id, reference, user_ref, screening_id, total_amount, created_at
	           FROM bookings WHERE user_ref = ?
	           ORDER BY created_at DESC, id DESC`
	var out []model.Booking
	if err := sqlx.SelectContext(ctx, r.db, &out, q, userRef); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}

// SeatsOf returns the booked seats of the given bookings ordered by
// booking and seat ID.
func (r *BookingRepo) SeatsOf(ctx context.Context, bookingIDs ...uint64) ([]BookedSeat, error) {
	if len(bookingIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT
			sb.id, sb.booking_id, sb.seat_id, sb.screening_id, sb.price,
			s.number AS seat_number,
			rp.name  AS tier_name
		FROM seat_bookings sb
		JOIN seats s        ON s.id = sb.seat_id
		JOIN room_prices rp ON rp.id = s.price_tier_id
		WHERE sb.booking_id IN (?)
		ORDER BY sb.booking_id, sb.seat_id`, bookingIDs)
	if err != nil {
		return nil, err
	}
	var out []BookedSeat
	err = sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(query), args...)
	return out, err
}

// Delete removes a booking and its seat rows, freeing the seats.  It
// returns ErrNotFound when no booking was deleted.  Run it inside a
// transaction.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM seat_bookings WHERE booking_id = ?`, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
