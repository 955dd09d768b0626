// Package queue defines message payloads exchanged over the message broker
// and the workers that move them: the outbox relay that publishes booking
// events and the consumer that records them.
package queue

import "time"

// Event kinds.  The kind is also the AMQP message type.
const (
	KindBookingConfirmed = "booking.confirmed"
	KindBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is confirmed or cancelled.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	EventID     string      `json:"event_id"`
	Kind        string      `json:"kind"`
	BookingID   uint64      `json:"booking_id"`
	Reference   string      `json:"reference"`
	UserRef     string      `json:"user_ref"`
	ScreeningID uint64      `json:"screening_id"`
	MovieID     uint64      `json:"movie_id"`
	CinemaID    uint64      `json:"cinema_id"`
	RoomID      uint64      `json:"room_id"`
	StartsAt    time.Time   `json:"starts_at"`
	Seats       []EventSeat `json:"seats"`
	TotalAmount int64       `json:"total_amount"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// EventSeat is one seat of a booking event.
type EventSeat struct {
	SeatID uint64 `json:"seat_id"`
	Number string `json:"number"`
	Price  int64  `json:"price"`
}
