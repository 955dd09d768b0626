package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// OutboxRepo stores booking events until they are relayed to the broker.
type OutboxRepo struct {
	db sqlx.ExtContext
}

// NewOutboxRepo constructs an OutboxRepo with the given DB handle.
func NewOutboxRepo(db sqlx.ExtContext) *OutboxRepo { return &OutboxRepo{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *OutboxRepo) WithTx(tx *sqlx.Tx) *OutboxRepo { return &OutboxRepo{db: tx} }

// Insert appends an event.  Call it in the transaction that changes
// the booking so that the event exists if and only if the change
// committed.
func (r *OutboxRepo) Insert(ctx context.Context, ev *model.BookingEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	ev.CreatedAt = ev.CreatedAt.UTC().Truncate(time.Microsecond)
	const q = `INSERT INTO booking_events (event_id, kind, payload, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, ev.EventID, ev.Kind, ev.Payload, ev.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return nil
}

// ListPending returns up to limit unpublished events, oldest first.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]model.BookingEvent, error) {
	const q = `SELECT id, event_id, kind, payload, created_at, published_at
	           FROM booking_events
	           WHERE published_at IS NULL
	           ORDER BY id
	           LIMIT ?`
	var out []model.BookingEvent
	err := sqlx.SelectContext(ctx, r.db, &out, q, limit)
	return out, err
}

// MarkPublished stamps the given events as published at t.
func (r *OutboxRepo) MarkPublished(ctx context.Context, t time.Time, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE booking_events SET published_at = ? WHERE id IN (?)`, t.UTC().Truncate(time.Microsecond), ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
