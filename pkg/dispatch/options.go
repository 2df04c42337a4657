package dispatch

import (
	"log/slog"
	"time"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSubmitTimeout bounds the whole submit sequence (store write plus
// publish with retries).
func WithSubmitTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.submitTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}
