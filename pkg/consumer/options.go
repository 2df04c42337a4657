package consumer

import "log/slog"

// Option configures a Consumer.
type Option func(*Consumer)

// WithQueue sets the report queue to consume from.
func WithQueue(queue string) Option {
	return func(c *Consumer) {
		if queue != "" {
			c.queue = queue
		}
	}
}

// WithConsumerTag sets the consumer tag visible to the broker.
func WithConsumerTag(tag string) Option {
	return func(c *Consumer) {
		if tag != "" {
			c.tag = tag
		}
	}
}

// WithPrefetch sets the channel prefetch count. Bounds how many unacked
// reports sit with one consumer instance.
func WithPrefetch(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.prefetch = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}
