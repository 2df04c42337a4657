package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/notifgate/notifgate/pkg/broker"
	"github.com/notifgate/notifgate/pkg/notify"
)

// Channel is the slice of the AMQP channel the publisher needs. *amqp.Channel
// satisfies it.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher maps notifications to their fixed channel destination and
// publishes them with priority metadata.
type Publisher struct {
	ch          Channel
	exchange    string
	maxAttempts int
	backoff     BackoffStrategy
	logger      *slog.Logger
}

// New creates a Publisher over an established broker channel. The channel's
// topology must already be declared; see broker.DeclareTopology.
func New(ch Channel, opts ...Option) (*Publisher, error) {
	if ch == nil {
		return nil, ErrChannelNil
	}

	p := &Publisher{
		ch:          ch,
		exchange:    broker.Exchange,
		maxAttempts: 3,
		backoff:     DefaultBackoff(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish sends the envelope to the destination for rec's channel. Transient
// failures are retried with backoff; after the attempt budget is exhausted
// it returns ErrBrokerUnavailable and the record must stay queued.
func (p *Publisher) Publish(ctx context.Context, rec notify.Record, env notify.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Join(ErrEnvelopeMarshal, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Priority:     uint8(rec.Priority),
		MessageId:    rec.ID,
		Timestamp:    time.Now(),
		Body:         body,
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.ch.PublishWithContext(ctx, p.exchange, string(rec.Channel), false, false, msg)
		if lastErr == nil {
			p.logger.Debug("notification published",
				slog.String("notification_id", rec.ID),
				slog.String("channel", string(rec.Channel)),
				slog.String("priority", rec.Priority.String()),
				slog.Int("attempt", attempt))
			return nil
		}

		p.logger.Warn("publish attempt failed",
			slog.String("notification_id", rec.ID),
			slog.String("channel", string(rec.Channel)),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.maxAttempts),
			slog.String("error", lastErr.Error()))

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrBrokerUnavailable, ctx.Err(), lastErr)
		case <-time.After(p.backoff.NextInterval(attempt)):
		}
	}

	return errors.Join(ErrBrokerUnavailable, lastErr)
}
