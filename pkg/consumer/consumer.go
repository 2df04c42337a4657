package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/notifgate/notifgate/pkg/notify"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

// Store is the slice of the status store the consumer needs. Both
// statusstore.RedisStore and statusstore.MemoryStore satisfy it.
type Store interface {
	ApplyReport(ctx context.Context, rep notify.DeliveryReport) (*notify.Record, error)
}

// AMQPChannel is the slice of the broker channel Run needs.
type AMQPChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer is the long-running delivery report ingestion loop.
type Consumer struct {
	store    Store
	verifier *Verifier
	queue    string
	tag      string
	prefetch int
	logger   *slog.Logger
}

// New creates a report consumer.
func New(store Store, verifier *Verifier, opts ...Option) (*Consumer, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if verifier == nil {
		return nil, ErrVerifierNil
	}

	c := &Consumer{
		store:    store,
		verifier: verifier,
		queue:    "notifications.reports",
		tag:      "notifgate-report-consumer",
		prefetch: 16,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run subscribes to the report queue on ch and consumes until ctx is
// cancelled or the channel closes. Acks are manual throughout.
func (c *Consumer) Run(ctx context.Context, ch AMQPChannel) error {
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set channel prefetch: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.queue, err)
	}

	return c.Consume(ctx, deliveries)
}

// Consume processes deliveries until ctx is cancelled or the channel closes.
// Cancellation stops intake; the report being processed always finishes its
// store write and acknowledgment first.
func (c *Consumer) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	c.logger.Info("report consumer started", slog.String("queue", c.queue))

	// Store writes and acks run on a detached context so cancelling intake
	// never abandons an in-flight report between write and ack.
	workCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("report consumer stopped", slog.String("queue", c.queue))
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("report delivery channel closed", slog.String("queue", c.queue))
				return nil
			}
			c.handle(workCtx, d)
		}
	}
}

// handle processes one report message end to end. Every failure mode is
// isolated here; nothing propagates out of the loop.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while handling delivery report",
				slog.String("message_id", d.MessageId),
				slog.Any("panic", r))
			// Redeliver: the sequence gate makes a second pass safe.
			_ = d.Nack(false, true)
		}
	}()

	rep, err := decodeReport(d.Body)
	if err != nil {
		c.logger.Error("rejecting malformed delivery report",
			slog.String("message_id", d.MessageId),
			slog.String("error", err.Error()))
		_ = d.Reject(false) // dead-lettered, retrying cannot fix the payload
		return
	}

	if err := c.verifier.Verify(rep.Source, d.Body, d.Headers); err != nil {
		c.logger.Error("rejecting unauthorized delivery report",
			slog.String("notification_id", rep.ID),
			slog.String("source", rep.Source),
			slog.String("error", errors.Join(ErrUnauthorizedReport, err).Error()))
		_ = d.Reject(false)
		return
	}

	updated, err := c.store.ApplyReport(ctx, rep)
	switch {
	case err == nil:
		c.logger.Info("delivery report applied",
			slog.String("notification_id", rep.ID),
			slog.String("status", string(updated.Status)),
			slog.Int64("report_seq", rep.ReportSeq),
			slog.String("source", rep.Source))
		_ = d.Ack(false)

	case errors.Is(err, statusstore.ErrNotFound):
		// The record may have expired or been purged; dropping is correct.
		c.logger.Warn("report for unknown notification dropped",
			slog.String("notification_id", rep.ID),
			slog.String("source", rep.Source))
		_ = d.Ack(false)

	case errors.Is(err, notify.ErrStaleReport),
		errors.Is(err, notify.ErrTerminalState),
		errors.Is(err, notify.ErrInvalidTransition):
		// Duplicate or reordered report: a no-op by contract.
		c.logger.Debug("stale delivery report ignored",
			slog.String("notification_id", rep.ID),
			slog.Int64("report_seq", rep.ReportSeq),
			slog.String("reason", err.Error()))
		_ = d.Ack(false)

	default:
		// Transient store failure: leave unacked, the broker redelivers.
		c.logger.Error("store write failed, report will be redelivered",
			slog.String("notification_id", rep.ID),
			slog.String("error", err.Error()))
		_ = d.Nack(false, true)
	}
}

func decodeReport(body []byte) (notify.DeliveryReport, error) {
	var rep notify.DeliveryReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return notify.DeliveryReport{}, errors.Join(ErrMalformedReport, err)
	}
	if err := rep.Validate(); err != nil {
		return notify.DeliveryReport{}, errors.Join(ErrMalformedReport, err)
	}
	return rep, nil
}
