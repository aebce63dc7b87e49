package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/config"
)

// Publisher sends booking events to RabbitMQ.  It dials per publish; event
// volume is one message per confirmed booking.
type Publisher struct {
	cfg config.AMQPConfig
	log *zap.Logger
}

func NewPublisher(cfg config.AMQPConfig, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{cfg: cfg, log: log.Named("publisher")}
}

// PublishBookingConfirmed publishes ev to the configured durable queue as a
// persistent JSON message.  Failures are returned to the caller, which owns
// reporting them.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	if !p.cfg.PublishEnabled {
		return nil
	}
	if err := p.publish(ctx, ev); err != nil {
		return fmt.Errorf("publish to %s: %w", p.cfg.Queue, err)
	}
	p.log.Debug("booking.confirmed published", zap.Uint64("booking_id", ev.BookingID))
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
