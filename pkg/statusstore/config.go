package statusstore

import "time"

// Config controls record retention and the TTL sweep.
type Config struct {
	// RecordTTL is how long a record stays queryable after creation. The
	// store is a latest-state cache, not an audit log.
	RecordTTL time.Duration `env:"STATUS_RECORD_TTL" envDefault:"168h"`

	// IdempotencyTTL bounds the window in which a duplicate submission with
	// the same idempotency key returns the original id.
	IdempotencyTTL time.Duration `env:"STATUS_IDEMPOTENCY_TTL" envDefault:"24h"`

	// QueuedDeadline is how long a record may sit in queued before the
	// sweep transitions it to expired.
	QueuedDeadline time.Duration `env:"STATUS_QUEUED_DEADLINE" envDefault:"24h"`

	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration `env:"STATUS_SWEEP_INTERVAL" envDefault:"1m"`
}

func (c Config) withDefaults() Config {
	if c.RecordTTL <= 0 {
		c.RecordTTL = 7 * 24 * time.Hour
	}
	if c.IdempotencyTTL <= 0 {
		c.IdempotencyTTL = 24 * time.Hour
	}
	if c.QueuedDeadline <= 0 {
		c.QueuedDeadline = 24 * time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return c
}
