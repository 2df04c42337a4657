package broker

import "errors"

var (
	// ErrNotReady is returned when the broker did not accept a connection
	// within the configured retry budget.
	ErrNotReady = errors.New("message broker did not become ready within the given time period")

	// ErrTopology wraps failures declaring the exchange, queues or bindings.
	ErrTopology = errors.New("failed to declare broker topology")

	// ErrHealthcheckFailed is returned when the broker connection is closed.
	ErrHealthcheckFailed = errors.New("broker healthcheck failed")
)
