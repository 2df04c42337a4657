package statusstore

import (
	"context"
	"log/slog"
	"time"
)

// SweepStore is the slice of the store the sweep needs.
type SweepStore interface {
	ExpireStale(ctx context.Context, before time.Time) (int, error)
}

// Sweeper periodically expires records that sat in queued past their
// deadline. It runs independently of the report consumer so a stuck broker
// never stalls expiry, and vice versa.
type Sweeper struct {
	store    SweepStore
	deadline time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweeperLogger sets the logger for the sweep loop.
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSweeper creates a sweeper over store using the retention settings in cfg.
func NewSweeper(store SweepStore, cfg Config, opts ...SweeperOption) *Sweeper {
	cfg = cfg.withDefaults()
	s := &Sweeper{
		store:    store,
		deadline: cfg.QueuedDeadline,
		interval: cfg.SweepInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled, sweeping every interval. Sweep errors
// are logged and the loop continues; the next tick retries.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("queued_deadline", s.deadline))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.store.ExpireStale(ctx, time.Now().Add(-s.deadline))
	if err != nil {
		s.logger.Error("expiry sweep failed",
			slog.String("error", err.Error()))
		return
	}
	if expired > 0 {
		s.logger.Info("expired stale queued notifications",
			slog.Int("count", expired))
	}
}
