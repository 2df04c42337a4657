// Package statusstore persists per-notification status records in a shared
// fast key-value store and enforces the notify state machine at the storage
// boundary.
//
// Two implementations are provided:
//
//   - RedisStore — the production backend. Every status transition runs as a
//     single Lua script so the compare-and-set on last_report_seq, the sticky
//     terminal check and the record rewrite are atomic. Correctness under
//     concurrent distributed writers therefore lives in the store, not in
//     application-level locks.
//   - MemoryStore — a mutex-guarded map with identical semantics, used in
//     tests and local development.
//
// Both implementations also maintain the idempotency-key mapping
// (caller-supplied key -> previously allocated id, with its own TTL) and the
// queued index consumed by the TTL sweep.
//
// # Usage
//
//	store := statusstore.NewRedisStore(client, statusstore.Config{
//	    RecordTTL:      7 * 24 * time.Hour,
//	    IdempotencyTTL: 24 * time.Hour,
//	})
//
//	rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityHigh)
//	if err := store.Create(ctx, rec); err != nil {
//	    // store unavailable or id collision
//	}
//
//	updated, err := store.ApplyReport(ctx, report)
//	switch {
//	case errors.Is(err, statusstore.ErrNotFound):
//	    // unknown notification, drop the report
//	case errors.Is(err, notify.ErrStaleReport):
//	    // duplicate or reordered report, no-op
//	}
//
// The Sweeper type runs the background expiry loop that moves queued records
// past their deadline to expired. It is deliberately decoupled from the
// report consumer so the two failure domains stay independent.
package statusstore
