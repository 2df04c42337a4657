package broker

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dial establishes a connection to the broker, retrying up to
// cfg.RetryAttempts times with cfg.RetryInterval between attempts, all
// bounded by cfg.ConnectTimeout.
func Dial(ctx context.Context, cfg Config) (*amqp.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var lastErr error
	for i := 0; i < cfg.RetryAttempts; i++ {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err(), lastErr)
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrNotReady, lastErr)
}

// Healthcheck reports whether the broker connection is still open.
func Healthcheck(conn *amqp.Connection) func(context.Context) error {
	return func(context.Context) error {
		if conn == nil || conn.IsClosed() {
			return ErrHealthcheckFailed
		}
		return nil
	}
}
