package dispatch

import "errors"

var (
	// ErrStoreNil is returned when a nil status store is provided.
	ErrStoreNil = errors.New("status store cannot be nil")

	// ErrPublisherNil is returned when a nil publisher is provided.
	ErrPublisherNil = errors.New("publisher cannot be nil")

	// ErrValidation wraps request-shape failures. Nothing is allocated,
	// written or published for an invalid request.
	ErrValidation = errors.New("invalid dispatch request")
)
