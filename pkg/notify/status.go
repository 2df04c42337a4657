package notify

import "time"

// CanTransition reports whether a record currently in from may move to the
// reported status to. The sequence gate is checked separately; this is the
// shape of the state machine only:
//
//	queued -> sent
//	queued, sent -> delivered
//	queued, sent -> failed
//	queued -> expired
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusSent:
		return from == StatusQueued
	case StatusDelivered, StatusFailed:
		return from == StatusQueued || from == StatusSent
	case StatusExpired:
		return from == StatusQueued
	}
	return false
}

// ApplyReport performs one idempotent, order-tolerant status transition in
// place. The rejection order matters for observability: a report against a
// terminal record is reported as such even when its sequence is also stale.
//
// Rejections are no-ops by contract, the record is left untouched.
func (r *Record) ApplyReport(rep DeliveryReport, now time.Time) error {
	if r.Status.Terminal() {
		return ErrTerminalState
	}
	if rep.ReportSeq <= r.LastReportSeq {
		return ErrStaleReport
	}
	if !CanTransition(r.Status, rep.Status) {
		return ErrInvalidTransition
	}

	r.Status = rep.Status
	r.LastReportSeq = rep.ReportSeq
	r.UpdatedAt = now.UTC()
	if rep.Detail != "" {
		r.Detail = rep.Detail
	}
	return nil
}

// Expire transitions a still-queued record to expired. Used by the TTL sweep
// only; reports cannot set expired. Returns false if the record already left
// the queued state.
func (r *Record) Expire(now time.Time) bool {
	if r.Status != StatusQueued {
		return false
	}
	r.Status = StatusExpired
	r.UpdatedAt = now.UTC()
	return true
}
