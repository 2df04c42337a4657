package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// NotificationID records the notification identifier.
func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

// Channel records the delivery channel.
func Channel(channel string) slog.Attr {
	return slog.String("channel", channel)
}

// Priority records the priority name.
func Priority(priority string) slog.Attr {
	return slog.String("priority", priority)
}

// ReportSeq records a delivery report sequence number.
func ReportSeq(seq int64) slog.Attr {
	return slog.Int64("report_seq", seq)
}

// Source records the reporting worker identity.
func Source(source string) slog.Attr {
	return slog.String("source", source)
}

// Queue records a broker queue name.
func Queue(name string) slog.Attr {
	return slog.String("queue", name)
}
