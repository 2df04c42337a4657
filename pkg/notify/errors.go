package notify

import "errors"

// Domain errors shared by the status store and the report consumer.
var (
	// ErrStaleReport is returned when a report's sequence number is not
	// strictly greater than the record's last applied sequence. Stale
	// reports are dropped silently, they are not failures.
	ErrStaleReport = errors.New("stale delivery report: sequence not greater than last applied")

	// ErrTerminalState is returned when a report targets a record that
	// already reached delivered, failed or expired. Terminal states are
	// sticky regardless of the report's sequence number.
	ErrTerminalState = errors.New("record is in a terminal state")

	// ErrInvalidTransition is returned when the reported status has no
	// transition from the record's current status (e.g. sent -> sent).
	ErrInvalidTransition = errors.New("no transition for reported status")

	// ErrInvalidChannel is returned when a request names an unknown
	// delivery channel.
	ErrInvalidChannel = errors.New("unknown delivery channel")

	// ErrInvalidPriority is returned when a priority is outside the range
	// the broker can order on.
	ErrInvalidPriority = errors.New("priority out of range")

	// ErrInvalidStatus is returned when a status string does not name a
	// known lifecycle state.
	ErrInvalidStatus = errors.New("unknown notification status")

	// ErrEmptyRecipient is returned when a submission carries no recipient.
	ErrEmptyRecipient = errors.New("recipient is required")

	// ErrEmptyBody is returned when a submission carries no message body.
	ErrEmptyBody = errors.New("message body is required")

	// ErrEmptyReportID is returned when a delivery report carries no
	// notification id.
	ErrEmptyReportID = errors.New("delivery report is missing notification id")

	// ErrEmptyReportSource is returned when a delivery report does not
	// identify the worker that produced it.
	ErrEmptyReportSource = errors.New("delivery report is missing source identity")

	// ErrReportSeqRequired is returned when a delivery report carries no
	// positive sequence number.
	ErrReportSeqRequired = errors.New("delivery report requires a positive report_seq")

	// ErrNonReportableStatus is returned when a delivery report claims a
	// status workers are not allowed to set (queued, expired).
	ErrNonReportableStatus = errors.New("status cannot be set by a delivery report")
)
