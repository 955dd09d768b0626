package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// EventPublisher delivers one outbox event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.BookingEvent) error
}

// Relay moves events from the outbox table to the broker.  Events are
// sent in ID order and marked published only after the broker accepted
// them; a failure stops the batch so order is kept for the next run.
// Delivery is at least once: consumers dedupe on the event ID.
type Relay struct {
	outbox *repository.OutboxRepo
	pub    EventPublisher
	batch  int
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewRelay returns a Relay that publishes up to batch events per run.
func NewRelay(outbox *repository.OutboxRepo, pub EventPublisher, batch int, log logrus.FieldLogger) *Relay {
	if batch < 1 {
		batch = 1
	}
	return &Relay{outbox: outbox, pub: pub, batch: batch, log: log, now: time.Now}
}

// RunOnce publishes one batch of pending events and returns how many
// were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.ListPending(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("list pending events: %w", err)
	}
	published := make([]uint64, 0, len(pending))
	var pubErr error
	for _, ev := range pending {
		if err := r.pub.Publish(ctx, ev); err != nil {
			pubErr = fmt.Errorf("event %s: %w", ev.EventID, err)
			break
		}
		published = append(published, ev.ID)
	}
	if err := r.outbox.MarkPublished(ctx, r.now(), published...); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	return len(published), pubErr
}

// Schedule registers the relay on s to run every interval.  Runs never
// overlap; a run still going when the next is due makes that one skip.
func (r *Relay) Schedule(s gocron.Scheduler, interval time.Duration) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval+10*time.Second)
			defer cancel()
			n, err := r.RunOnce(ctx)
			if err != nil {
				r.log.WithError(err).WithField("published", n).Warn("outbox relay run failed")
				return
			}
			if n > 0 {
				r.log.WithField("published", n).Debug("outbox relay published events")
			}
		}),
		gocron.WithName("outbox-relay"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}
