// Package dispatch orchestrates the producer path of the gateway: allocate
// an identity, write the initial queued record, publish to the priority
// queue, return the accepted receipt.
//
// The ordering is deliberate (write-before-publish): a record exists in the
// status store before the broker ever sees the message, so a delivery report
// referencing the id can never race record creation. Each step fails
// distinctly:
//
//   - validation failure   -> ErrValidation, nothing allocated or written
//   - store failure        -> statusstore.ErrUnavailable, nothing published
//   - publish failure      -> publisher.ErrBrokerUnavailable; the record is
//     NOT rolled back — it legitimately exists as queued and is reconciled
//     by a client retry or the expiry sweep
//
// A caller-supplied idempotency key makes retried submissions return the
// originally allocated id instead of creating a second record. The receipt
// is returned before any delivery happens; callers observe outcomes via
// Status, never synchronously.
package dispatch
