package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/notifgate/notifgate/pkg/notify"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

// Store is the slice of the status store the producer path needs.
type Store interface {
	Create(ctx context.Context, rec notify.Record) error
	Get(ctx context.Context, id string) (*notify.Record, error)
	ReserveKey(ctx context.Context, key, id string) (owner string, reserved bool, err error)
	ReleaseKey(ctx context.Context, key string) error
}

// Publisher pushes an accepted notification to its channel destination.
type Publisher interface {
	Publish(ctx context.Context, rec notify.Record, env notify.Envelope) error
}

// Receipt is the synchronous result of a submission. Duplicate marks a
// submission deduplicated by idempotency key.
type Receipt struct {
	ID        string        `json:"id"`
	Status    notify.Status `json:"status"`
	Duplicate bool          `json:"duplicate,omitempty"`
}

// Dispatcher ties the producer path together.
type Dispatcher struct {
	store         Store
	publisher     Publisher
	submitTimeout time.Duration
	logger        *slog.Logger
}

// New creates a Dispatcher.
func New(store Store, pub Publisher, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if pub == nil {
		return nil, ErrPublisherNil
	}

	d := &Dispatcher{
		store:         store,
		publisher:     pub,
		submitTimeout: 10 * time.Second,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Submit accepts a notification for asynchronous delivery. On success the
// returned receipt carries the allocated id and status queued; the caller
// never blocks on delivery itself.
func (d *Dispatcher) Submit(ctx context.Context, req notify.DispatchRequest) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, errors.Join(ErrValidation, err)
	}

	// A submission that cannot finish within the deadline fails the
	// request instead of hanging it.
	ctx, cancel := context.WithTimeout(ctx, d.submitTimeout)
	defer cancel()

	id := notify.NewID()

	if req.IdempotencyKey != "" {
		owner, reserved, err := d.store.ReserveKey(ctx, req.IdempotencyKey, id)
		if err != nil {
			return Receipt{}, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !reserved {
			if receipt, ok := d.duplicateReceipt(ctx, owner); ok {
				d.logger.Info("duplicate submission deduplicated",
					slog.String("notification_id", owner),
					slog.String("idempotency_key", req.IdempotencyKey))
				return receipt, nil
			}
			// The key holder crashed between reserving and creating its
			// record. Adopt the reserved id and finish the submission.
			id = owner
		}
	}

	rec := notify.NewRecord(id, req.Channel, req.Priority)
	if err := d.store.Create(ctx, rec); err != nil {
		if errors.Is(err, statusstore.ErrAlreadyExists) {
			if receipt, ok := d.duplicateReceipt(ctx, id); ok {
				return receipt, nil
			}
		}
		d.releaseKey(ctx, req.IdempotencyKey)
		return Receipt{}, fmt.Errorf("create record %s: %w", id, err)
	}

	env := notify.Envelope{
		ID:        rec.ID,
		Channel:   rec.Channel,
		Priority:  rec.Priority,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
	}
	if err := d.publisher.Publish(ctx, rec, env); err != nil {
		// No rollback: the record legitimately exists as queued and the
		// expiry sweep or a client retry reconciles it. The key is
		// released so a retry actually re-publishes.
		d.releaseKey(ctx, req.IdempotencyKey)
		d.logger.Error("publish failed, record left queued",
			slog.String("notification_id", rec.ID),
			slog.String("channel", string(rec.Channel)),
			slog.String("error", err.Error()))
		return Receipt{}, fmt.Errorf("publish notification %s: %w", rec.ID, err)
	}

	d.logger.Info("notification accepted",
		slog.String("notification_id", rec.ID),
		slog.String("channel", string(rec.Channel)),
		slog.String("priority", rec.Priority.String()))

	return Receipt{ID: rec.ID, Status: notify.StatusQueued}, nil
}

// Status returns the current record for id.
func (d *Dispatcher) Status(ctx context.Context, id string) (*notify.Record, error) {
	return d.store.Get(ctx, id)
}

func (d *Dispatcher) duplicateReceipt(ctx context.Context, id string) (Receipt, bool) {
	rec, err := d.store.Get(ctx, id)
	if err != nil {
		return Receipt{}, false
	}
	return Receipt{ID: rec.ID, Status: rec.Status, Duplicate: true}, true
}

func (d *Dispatcher) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := d.store.ReleaseKey(ctx, key); err != nil {
		d.logger.Warn("failed to release idempotency key",
			slog.String("idempotency_key", key),
			slog.String("error", err.Error()))
	}
}
