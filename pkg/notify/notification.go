package notify

import (
	"fmt"
	"time"
)

// Status represents a notification's lifecycle state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Valid reports whether s names a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusSent, StatusDelivered, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether s is a sticky end state. No report, regardless of
// its sequence number, may move a record out of a terminal state.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// ParseStatus converts a wire-level status string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Priority maps directly onto AMQP message priority (0-9, higher wins).
// Queues are declared with x-max-priority so the broker orders pending
// messages per destination by this value.
type Priority uint8

const (
	PriorityLow      Priority = 2
	PriorityNormal   Priority = 5
	PriorityHigh     Priority = 7
	PriorityCritical Priority = 9

	// MaxPriority is the x-max-priority value destinations are declared with.
	MaxPriority = 10
)

// Valid reports whether p fits the broker's priority range.
func (p Priority) Valid() bool {
	return p < MaxPriority
}

// ParsePriority converts a wire-level priority name into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal", "":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// String returns the wire-level priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityHigh:
		return "high"
	case p >= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Channel identifies a delivery channel. Each channel maps to exactly one
// broker destination, established at startup.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// Channels lists every channel the gateway routes, in declaration order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelPush, ChannelSMS}
}

// Valid reports whether c names a routable channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelPush, ChannelSMS:
		return true
	}
	return false
}

// Record is the per-notification state held in the status store, keyed by ID.
// ID, Channel and Priority are immutable once the record is created; Status,
// UpdatedAt, LastReportSeq and Detail advance only through ApplyReport and
// the TTL sweep.
type Record struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	Channel       Channel   `json:"channel"`
	Priority      Priority  `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastReportSeq int64     `json:"last_report_seq"`
	Detail        string    `json:"detail,omitempty"`
}

// NewRecord returns a fresh queued record for the given identity.
func NewRecord(id string, channel Channel, priority Priority) Record {
	now := time.Now().UTC()
	return Record{
		ID:        id,
		Status:    StatusQueued,
		Channel:   channel,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DispatchRequest is the producer-side input. It is transient: nothing
// beyond the derived Record outlives the submission.
type DispatchRequest struct {
	Channel        Channel  `json:"channel"`
	Priority       Priority `json:"priority"`
	Recipient      string   `json:"recipient"`
	Subject        string   `json:"subject,omitempty"`
	Body           string   `json:"body"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// Validate checks the request shape before anything is allocated or enqueued.
func (r DispatchRequest) Validate() error {
	if !r.Channel.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChannel, r.Channel)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, r.Priority)
	}
	if r.Recipient == "" {
		return ErrEmptyRecipient
	}
	if r.Body == "" {
		return ErrEmptyBody
	}
	return nil
}

// Envelope is the message published to a channel destination. Priority is
// carried as broker-native metadata as well; the copy here is informational
// for the delivery worker.
type Envelope struct {
	ID        string   `json:"id"`
	Channel   Channel  `json:"channel"`
	Priority  Priority `json:"priority"`
	Recipient string   `json:"recipient"`
	Subject   string   `json:"subject,omitempty"`
	Body      string   `json:"body"`
}

// DeliveryReport is the consumer-side input: an asynchronous outcome message
// from a delivery worker. ReportSeq is monotonic per notification and is the
// sole ordering discipline for status transitions.
type DeliveryReport struct {
	ID        string `json:"id"`
	Status    Status `json:"status"`
	ReportSeq int64  `json:"report_seq"`
	Detail    string `json:"detail,omitempty"`
	Source    string `json:"source"`
}

// Validate checks the report shape. A report failing validation is
// malformed and must be dead-lettered, not retried.
func (r DeliveryReport) Validate() error {
	if r.ID == "" {
		return ErrEmptyReportID
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if r.Status == StatusQueued || r.Status == StatusExpired {
		return fmt.Errorf("%w: %q", ErrNonReportableStatus, r.Status)
	}
	if r.ReportSeq <= 0 {
		return ErrReportSeqRequired
	}
	if r.Source == "" {
		return ErrEmptyReportSource
	}
	return nil
}
