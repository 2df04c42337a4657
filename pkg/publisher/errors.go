package publisher

import "errors"

var (
	// ErrChannelNil is returned when a nil broker channel is provided.
	ErrChannelNil = errors.New("broker channel cannot be nil")

	// ErrBrokerUnavailable is returned when publishing failed after
	// exhausting all retry attempts. The notification record must remain
	// queued so the submission can be retried.
	ErrBrokerUnavailable = errors.New("broker unavailable: publish failed after retries")

	// ErrEnvelopeMarshal is returned when the message payload cannot be
	// serialized.
	ErrEnvelopeMarshal = errors.New("failed to marshal message envelope")
)
