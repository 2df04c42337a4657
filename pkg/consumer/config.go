package consumer

import "time"

// Config holds the consumer settings loaded from the environment.
//
// SourceSecrets is parsed from a comma-separated list of source:secret
// pairs, e.g. "email-worker:s1,push-worker:s2,sms-worker:s3".
type Config struct {
	Queue           string            `env:"REPORT_QUEUE" envDefault:"notifications.reports"`
	ConsumerTag     string            `env:"REPORT_CONSUMER_TAG" envDefault:"notifgate-report-consumer"`
	Prefetch        int               `env:"REPORT_PREFETCH" envDefault:"16"`
	SourceSecrets   map[string]string `env:"REPORT_SOURCE_SECRETS,required" envSeparator:"," envKeyValSeparator:":"`
	SignatureMaxAge time.Duration     `env:"REPORT_SIGNATURE_MAX_AGE" envDefault:"5m"`
}
