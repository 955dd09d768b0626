package database

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"
)

// InTx runs fn inside a transaction and commits when fn returns nil.
// The transaction is rolled back on any error or panic.  Begin and
// commit errors are classified (see Classify); errors returned by fn
// are classified too so that a duplicate key raised by an INSERT
// surfaces as ErrConflict.
func (db *DB) InTx(ctx context.Context, readOnly bool, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, db.Dialect.TxOptions(readOnly))
	if err != nil {
		return Classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return Classify(err)
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	committed = true
	return nil
}

// RetryPolicy bounds how often a conflicting transaction is re-run.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retry calls fn until it returns nil or an error that is not
// ErrConflict, or until MaxAttempts calls have been made.  Between
// attempts it sleeps with jittered exponential backoff.  When ctx ends
// during a backoff the context error is returned joined with the last
// conflict.  On exhaustion the last conflict error is returned.
func Retry(ctx context.Context, p RetryPolicy, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, last)
		}
		last = fn(attempt)
		if last == nil || !errors.Is(last, ErrConflict) {
			return last
		}
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), last)
		case <-timer.C:
		}
	}
	return last
}

// backoff returns the delay after the given (1-based) failed attempt:
// BaseDelay doubled per attempt, capped at MaxDelay, with up to 50%
// random jitter subtracted so racing callers spread out.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt && (p.MaxDelay <= 0 || d < p.MaxDelay); i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d - time.Duration(rand.Int64N(int64(d)/2+1))
}
