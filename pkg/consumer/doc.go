// Package consumer ingests asynchronous delivery reports from the broker and
// applies status transitions through the status store.
//
// The ingestion loop is built for at-least-once semantics: a message is
// acknowledged only after the store write succeeded, so a crash between
// write and ack results in redelivery, and the store's sequence-gated
// conditional writes make that redelivery a harmless no-op.
//
// Per-message outcomes:
//
//   - verified, applied        -> ack
//   - malformed payload        -> reject without requeue (dead-lettered)
//   - failed source auth       -> reject without requeue, alerted
//   - unknown notification id  -> ack and drop (record expired or purged)
//   - stale or no-op report    -> ack and drop (idempotence, not an error)
//   - transient store failure  -> nack with requeue (redelivery expected)
//
// No per-message failure crashes the loop; handler panics are recovered and
// the offending message is redelivered. Cancelling the context stops intake
// after the in-flight report finishes, preserving the ack discipline through
// shutdown.
package consumer
