package publisher

import "log/slog"

// Option configures a Publisher.
type Option func(*Publisher)

// WithExchange overrides the target exchange. Defaults to broker.Exchange.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.exchange = name
		}
	}
}

// WithMaxAttempts sets the total publish attempts before giving up (1-10).
func WithMaxAttempts(n int) Option {
	return func(p *Publisher) {
		if n >= 1 && n <= 10 {
			p.maxAttempts = n
		}
	}
}

// WithBackoff sets the retry backoff strategy.
func WithBackoff(b BackoffStrategy) Option {
	return func(p *Publisher) {
		if b != nil {
			p.backoff = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}
