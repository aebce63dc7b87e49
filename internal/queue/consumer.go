package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/config"
)

// StartBookingConsumer consumes the booking queue and appends one line per
// confirmed booking to w.  It reconnects with exponential backoff and only
// returns once ctx is cancelled.  Malformed messages are rejected without
// requeue.
func StartBookingConsumer(ctx context.Context, cfg config.AMQPConfig, w io.Writer, log *zap.Logger) error {
	log = log.Named("booking-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		log.Info("connected", zap.String("queue", cfg.Queue))

		err = consumeLoop(ctx, conn, cfg.Queue, w, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, w io.Writer, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, w); err != nil {
			log.Error("handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, w io.Writer) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 {
		return errors.New("event without booking_id")
	}
	if _, err := io.WriteString(w, FormatLogLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLogLine renders ev as a single booking log line.
func FormatLogLine(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | customer=%q (id=%d) | tent=%q (id=%d) | location=%q | dates=%s..%s | guests=%d | total=%s | confirmed_by=%d\n",
		ev.ConfirmedAt, ev.BookingID, ev.CustomerUsername, ev.CustomerID, ev.TentTypeName, ev.TentTypeID,
		ev.Location, ev.EventDate, ev.EndDate, ev.NumberOfGuests, ev.TotalAmount, ev.ConfirmedBy)
}

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
