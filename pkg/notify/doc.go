// Package notify defines the core domain model of the dispatch gateway: the
// notification record held in the status store, the submission and delivery
// report payloads, and the status state machine that governs every record's
// lifecycle.
//
// The package is intentionally free of I/O. Status transitions are expressed
// as pure functions over Record values so that every storage backend (the
// Redis store, the in-memory store used in tests) enforces exactly the same
// semantics:
//
//   - queued -> sent -> {delivered, failed}
//   - queued -> expired (TTL sweep)
//   - delivered, failed and expired are terminal and sticky
//
// All forward transitions are additionally gated on a strictly increasing
// report sequence number. A report whose sequence is not greater than the
// record's last applied sequence is a no-op, never an error to the reporting
// side. This is what makes the consumer safe under at-least-once delivery:
// duplicates and reordered reports converge to the same final state
// regardless of arrival order.
//
// # Usage
//
//	rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityCritical)
//
//	err := rec.ApplyReport(notify.DeliveryReport{
//	    ID:        rec.ID,
//	    Status:    notify.StatusSent,
//	    ReportSeq: 1,
//	    Source:    "email-worker",
//	}, time.Now())
//
// # Errors
//
// Sentinel errors (ErrStaleReport, ErrTerminalState, ErrInvalidTransition)
// signal rejected transitions and can be checked with errors.Is.
package notify
