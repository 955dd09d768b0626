package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer listens to the booking.events queue and appends one line per
// event to a log file (logs/booking.log by default).
type Consumer struct {
	url  string
	path string
	log  logrus.FieldLogger

	mu sync.Mutex
}

// NewConsumer returns a Consumer for the broker at url writing to path.
func NewConsumer(url, path string, log logrus.FieldLogger) *Consumer {
	if path == "" {
		path = filepath.Join("logs", "booking.log")
	}
	return &Consumer{url: url, path: path, log: log}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// messages until ctx is done.  Lost connections are re-dialed with
// exponential backoff up to 30 seconds.  Messages that cannot be
// handled are rejected without requeue so a bad payload cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).WithField("retry_in", backoff).Warn("booking consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("booking consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("booking consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.log.WithError(err).WithField("message_id", d.MessageId).Error("booking consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event and appends its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.EventID == "" || ev.Kind == "" {
		return errors.New("event without id or kind")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human friendly log line.
func FormatLine(ev BookingEvent) string {
	seats := make([]string, len(ev.Seats))
	for i, s := range ev.Seats {
		seats[i] = s.Number
	}
	verb := "confirmed"
	if ev.Kind == KindBookingCancelled {
		verb = "cancelled"
	}
	return fmt.Sprintf("[%s] Booking %s | event=%s | booking_id=%d | ref=%s | user=%q | screening_id=%d | room_id=%d | starts_at=%s | total=%d | seats=[%s]\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), verb, ev.EventID, ev.BookingID, ev.Reference, ev.UserRef,
		ev.ScreeningID, ev.RoomID, ev.StartsAt.UTC().Format(time.RFC3339), ev.TotalAmount, strings.Join(seats, ","))
}

// sleep waits for d or until ctx is done and reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
