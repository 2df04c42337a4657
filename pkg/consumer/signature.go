package consumer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQP message headers carrying report authentication.
const (
	HeaderSignature = "x-report-signature"
	HeaderTimestamp = "x-report-timestamp"
)

// Sign computes the signature headers a delivery worker attaches to a report
// message: HMAC-SHA256(secret, timestamp + "." + body). Binding the
// timestamp into the signature bounds the replay window.
func Sign(secret string, body []byte, now time.Time) amqp.Table {
	ts := now.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return amqp.Table{
		HeaderSignature: hex.EncodeToString(mac.Sum(nil)),
		HeaderTimestamp: ts,
	}
}

// Verifier authenticates report messages against per-source shared secrets.
// An unauthenticated report is rejected, never applied: without this check
// any worker could spoof terminal states for arbitrary notifications.
type Verifier struct {
	secrets map[string]string
	maxAge  time.Duration
}

// NewVerifier creates a Verifier. secrets maps source identity to its shared
// secret; maxAge bounds signature timestamp skew (0 disables the age check).
func NewVerifier(secrets map[string]string, maxAge time.Duration) *Verifier {
	cloned := make(map[string]string, len(secrets))
	for k, v := range secrets {
		cloned[k] = v
	}
	return &Verifier{secrets: cloned, maxAge: maxAge}
}

// Verify checks the message signature for the claimed source.
func (v *Verifier) Verify(source string, body []byte, headers amqp.Table) error {
	secret, ok := v.secrets[source]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	sig, ts, err := extractSignature(headers)
	if err != nil {
		return err
	}

	if v.maxAge > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > v.maxAge {
			return fmt.Errorf("%w: %s old", ErrSignatureExpired, age)
		}
		// Tolerate a little clock skew, reject far-future timestamps.
		if age < -time.Minute {
			return fmt.Errorf("%w: timestamp in the future", ErrSignatureExpired)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrSignatureMismatch
	}
	return nil
}

func extractSignature(headers amqp.Table) (sig string, ts int64, err error) {
	if headers == nil {
		return "", 0, ErrSignatureMissing
	}

	sig, _ = headers[HeaderSignature].(string)
	if sig == "" {
		return "", 0, ErrSignatureMissing
	}

	// AMQP tables deserialize integers into several Go types depending on
	// the client that produced them.
	switch v := headers[HeaderTimestamp].(type) {
	case int64:
		ts = v
	case int32:
		ts = int64(v)
	case int:
		ts = int64(v)
	default:
		return "", 0, errors.Join(ErrSignatureMissing, fmt.Errorf("unexpected timestamp type %T", v))
	}
	if ts == 0 {
		return "", 0, ErrSignatureMissing
	}
	return sig, ts, nil
}
