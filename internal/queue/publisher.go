package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// QueueName is the durable queue booking events are published to.
const QueueName = "booking.events"

// Publisher publishes outbox events to RabbitMQ.  It keeps one
// connection and channel open and re-dials after a failure.  Messages
// are persistent and each publish waits for the broker's confirm.
type Publisher struct {
	url string
	log logrus.FieldLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a Publisher for the broker at url.  No connection
// is made until the first Publish.
func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish sends ev and returns once the broker has confirmed it.  A nil
// error means the broker took responsibility for the message.
func (p *Publisher) Publish(ctx context.Context, ev model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    ev.EventID,
		Type:         ev.Kind,
		Timestamp:    ev.CreatedAt.UTC(),
		Body:         []byte(ev.Payload),
	}
	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		msg,
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.EventID, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		p.reset()
		return fmt.Errorf("confirm %s: %w", ev.EventID, err)
	}
	if !acked {
		return fmt.Errorf("broker rejected event %s", ev.EventID)
	}
	return nil
}

// channel returns the open channel, dialing first when needed.  The
// caller holds p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq confirm mode: %w", err)
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.WithField("queue", QueueName).Info("rabbitmq publisher connected")
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
