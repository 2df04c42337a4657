// Package publisher pushes accepted notifications to their channel
// destination on the broker.
//
// Priority travels as broker-native message metadata (AMQP priority), not
// merely inside the payload, so the broker can surface higher-priority
// messages among those pending at a destination. The guarantee is relative
// and per-destination: messages already in flight to a consumer, and
// messages on other destinations, are not reordered.
//
// Transient broker failures are retried with bounded exponential backoff and
// jitter. Once the budget is exhausted Publish returns ErrBrokerUnavailable;
// the caller is expected to leave the record queued so an out-of-band sweep
// or a client retry can reconcile. A retry may succeed after a lost ack, so
// downstream consumption must tolerate duplicate publishes.
package publisher
