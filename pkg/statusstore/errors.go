package statusstore

import "errors"

var (
	// ErrNotFound is returned when no record exists for the given id. The
	// record may have expired and been evicted, or never existed.
	ErrNotFound = errors.New("notification record not found")

	// ErrAlreadyExists is returned when Create would overwrite an existing
	// record. Ids are never reused, so this indicates a caller bug.
	ErrAlreadyExists = errors.New("notification record already exists")

	// ErrUnavailable wraps transport-level store failures. Submissions fail
	// fast on it; the consumer treats it as transient and redelivers.
	ErrUnavailable = errors.New("status store unavailable")

	// ErrKeyEmpty is returned when an idempotency operation is called with
	// an empty key.
	ErrKeyEmpty = errors.New("idempotency key is empty")
)
