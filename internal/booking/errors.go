package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

var (
	// ErrNotFound is returned when the screening, a seat, a price tier
	// or the booking does not exist.  It is the repository sentinel, so
	// lookups need no translation.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidRequest is returned for malformed input: an empty or
	// duplicated seat set, a blank user reference or a seat outside the
	// screening's room.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrSeatUnavailable is matched by every *SeatUnavailableError.
	ErrSeatUnavailable = errors.New("seat unavailable")
	// ErrStoreUnavailable is returned when the database cannot be
	// reached.  Nothing was committed and the request may be retried.
	ErrStoreUnavailable = errors.New("booking store unavailable")
)

// SeatUnavailableError reports that a booking could not take its seats.
// The result is final for the request: the caller picks other seats and
// submits again.
type SeatUnavailableError struct {
	// SeatIDs are the seats found booked.  After a lost race or a
	// timeout the taken seats are unknown and all requested seats are
	// listed.
	SeatIDs []uint64
	// Timeout is set when the caller's deadline ended the attempt
	// rather than a definitive conflict.
	Timeout bool
	Err     error
}

func (e *SeatUnavailableError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = fmt.Sprint(id)
	}
	msg := "seat unavailable: " + strings.Join(ids, ",")
	if e.Timeout {
		msg += " (timed out)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrSeatUnavailable) hold.
func (e *SeatUnavailableError) Is(target error) bool { return target == ErrSeatUnavailable }

func (e *SeatUnavailableError) Unwrap() error { return e.Err }

// storeErr prefixes err with op and marks connectivity failures with
// ErrStoreUnavailable.  Typed errors stay reachable through errors.Is.
func storeErr(op string, err error) error {
	if database.IsTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
