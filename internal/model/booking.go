package model

import "time"

// Booking records a user's purchase of one or more seats for a single
// screening.  The seats are stored as SeatBooking rows created in the
// same transaction.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – public UUID printed on the ticket.
//  UserRef     – opaque reference of the user who booked.
//  ScreeningID – screening the seats belong to.
//  TotalAmount – sum of the seat prices in the smallest currency unit.
//  CreatedAt   – creation timestamp (UTC).
type Booking struct {
    ID          uint64    `db:"id" json:"id"`                     // bookings.id
    Reference   string    `db:"reference" json:"reference"`       // bookings.reference
    UserRef     string    `db:"user_ref" json:"user_ref"`         // bookings.user_ref
    ScreeningID uint64    `db:"screening_id" json:"screening_id"` // bookings.screening_id
    TotalAmount int64     `db:"total_amount" json:"total_amount"` // bookings.total_amount
    CreatedAt   time.Time `db:"created_at" json:"created_at"`     // bookings.created_at
}

// SeatBooking is the atomic unit of reservation: one seat, one
// screening, one booking.  For a given (ScreeningID, SeatID) pair at
// most one row exists; the database enforces this with a unique key.
// ScreeningID duplicates the booking's screening so availability can
// be answered from this table alone.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – owning booking.
//  SeatID      – seat that has been booked.
//  ScreeningID – screening in which the seat is booked.
//  Price       – price charged for this seat.
type SeatBooking struct {
    ID          uint64 `db:"id" json:"id"`                     // seat_bookings.id
    BookingID   uint64 `db:"booking_id" json:"booking_id"`     // seat_bookings.booking_id
    SeatID      uint64 `db:"seat_id" json:"seat_id"`           // seat_bookings.seat_id
    ScreeningID uint64 `db:"screening_id" json:"screening_id"` // seat_bookings.screening_id
    Price       int64  `db:"price" json:"price"`               // seat_bookings.price
}

// BookingEvent is an outbox row: a booking event written in the same
// transaction as the booking change and relayed to the message broker
// afterwards.  PublishedAt stays nil until the broker accepted it.
type BookingEvent struct {
    ID          uint64     `db:"id" json:"id"`                     // booking_events.id
    EventID     string     `db:"event_id" json:"event_id"`         // booking_events.event_id (UUID)
    Kind        string     `db:"kind" json:"kind"`                 // booking_events.kind
    Payload     string     `db:"payload" json:"payload"`           // booking_events.payload (JSON)
    CreatedAt   time.Time  `db:"created_at" json:"created_at"`     // booking_events.created_at
    PublishedAt *time.Time `db:"published_at" json:"published_at"` // booking_events.published_at (nullable)
}
