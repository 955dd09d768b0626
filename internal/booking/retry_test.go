package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
	"github.com/iliyamo/cinema-booking/internal/pricing"
)

// conflictingTx wraps a manager's transaction runner so the first
// `fail` write transactions report a write conflict without running.
// before, when set, runs ahead of every failed attempt.
type conflictingTx struct {
	next   func(ctx context.Context, readOnly bool, fn func(*sqlx.Tx) error) error
	fail   int
	calls  int
	before func()
}

func (c *conflictingTx) inTx(ctx context.Context, readOnly bool, fn func(*sqlx.Tx) error) error {
	c.calls++
	if c.calls <= c.fail {
		if c.before != nil {
			c.before()
		}
		return fmt.Errorf("insert seat_bookings: %w", database.ErrConflict)
	}
	return c.next(ctx, readOnly, fn)
}

type retryEnv struct {
	db      *database.DB
	fx      dbtest.Fixture
	manager *Manager
	tx      *conflictingTx
}

func newRetryEnv(t *testing.T, fail, attempts int) retryEnv {
	t.Helper()
	db := dbtest.New(t)
	fx := dbtest.Seed(t, db, dbtest.Room{
		Name:      "R1",
		Tiers:     []dbtest.Tier{{Name: "NORMAL", Type: "fixed", Value: 200}},
		Seats:     [][2]string{{"S1", "NORMAL"}, {"S2", "NORMAL"}},
		BasePrice: 1000,
	})
	log, _ := test.NewNullLogger()
	policy := database.RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	m := NewManager(db, catalog.NewStore(db), pricing.Engine{}, policy, log)
	tx := &conflictingTx{next: m.inTx, fail: fail}
	m.inTx = tx.inTx
	return retryEnv{db: db, fx: fx, manager: m, tx: tx}
}

func (e retryEnv) request(user string) CreateBookingRequest {
	return CreateBookingRequest{
		ScreeningID: e.fx.ScreeningID,
		SeatIDs:     []uint64{e.fx.Seats["S1"], e.fx.Seats["S2"]},
		UserRef:     user,
	}
}

func TestCreateBooking_RetriesAfterConflict(t *testing.T) {
	e := newRetryEnv(t, 1, 3)

	b, err := e.manager.CreateBooking(context.Background(), e.request("alice"))
	require.NoError(t, err)
	assert.Equal(t, 2, e.tx.calls)
	assert.EqualValues(t, 2400, b.TotalAmount)

	taken, err := e.manager.bookings.SeatsOf(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, taken, 2, "the retried attempt wrote every seat once")
}

func TestCreateBooking_ConflictRetriesExhausted(t *testing.T) {
	e := newRetryEnv(t, 3, 3)
	req := e.request("alice")

	_, err := e.manager.CreateBooking(context.Background(), req)
	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ElementsMatch(t, req.SeatIDs, unavailable.SeatIDs)
	assert.False(t, unavailable.Timeout)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.ErrorIs(t, err, database.ErrConflict)
	assert.Equal(t, 3, e.tx.calls)

	// nothing was committed
	e.tx.fail = 0
	_, err = e.manager.CreateBooking(context.Background(), e.request("bob"))
	assert.NoError(t, err)
}

func TestCreateBooking_RetryFindsSeatTaken(t *testing.T) {
	e := newRetryEnv(t, 1, 3)
	log, _ := test.NewNullLogger()
	rival := NewManager(e.db, catalog.NewStore(e.db), pricing.Engine{}, e.manager.retry, log)
	s1 := e.fx.Seats["S1"]

	// the rival commits S1 while the first attempt loses its race
	e.tx.before = func() {
		_, err := rival.CreateBooking(context.Background(), CreateBookingRequest{
			ScreeningID: e.fx.ScreeningID, SeatIDs: []uint64{s1}, UserRef: "bob",
		})
		require.NoError(t, err)
	}

	_, err := e.manager.CreateBooking(context.Background(), e.request("alice"))
	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []uint64{s1}, unavailable.SeatIDs)
	assert.False(t, unavailable.Timeout)
	assert.Equal(t, 2, e.tx.calls, "a seat found taken is final")
}
