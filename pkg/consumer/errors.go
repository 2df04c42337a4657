package consumer

import "errors"

var (
	// ErrStoreNil is returned when a nil status store is provided.
	ErrStoreNil = errors.New("status store cannot be nil")

	// ErrVerifierNil is returned when a nil report verifier is provided.
	ErrVerifierNil = errors.New("report verifier cannot be nil")

	// ErrMalformedReport marks a report that cannot be decoded or fails
	// field validation. Such messages are dead-lettered, never requeued.
	ErrMalformedReport = errors.New("malformed delivery report")

	// ErrUnauthorizedReport marks a report whose source authentication
	// failed. Dropped and alerted; never applied.
	ErrUnauthorizedReport = errors.New("unauthorized delivery report")

	// ErrUnknownSource is returned when no secret is configured for the
	// report's source identity.
	ErrUnknownSource = errors.New("no secret configured for report source")

	// ErrSignatureMissing is returned when the report message carries no
	// signature headers.
	ErrSignatureMissing = errors.New("report signature headers missing")

	// ErrSignatureExpired is returned when the signature timestamp is
	// outside the accepted window.
	ErrSignatureExpired = errors.New("report signature timestamp outside accepted window")

	// ErrSignatureMismatch is returned when the computed signature does not
	// match the one the message carries.
	ErrSignatureMismatch = errors.New("report signature mismatch")
)
