package consumer_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifgate/notifgate/pkg/consumer"
	"github.com/notifgate/notifgate/pkg/notify"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

const (
	testSource = "email-worker"
	testSecret = "shared-secret"
)

// fakeAcker records the acknowledgment outcome of a single delivery.
type fakeAcker struct {
	acked    bool
	nacked   bool
	rejected bool
	requeued bool
}

func (f *fakeAcker) Ack(uint64, bool) error { f.acked = true; return nil }

func (f *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcker) Reject(_ uint64, requeue bool) error {
	f.rejected = true
	f.requeued = requeue
	return nil
}

// unavailableStore simulates a status store outage.
type unavailableStore struct{}

func (unavailableStore) ApplyReport(context.Context, notify.DeliveryReport) (*notify.Record, error) {
	return nil, statusstore.ErrUnavailable
}

func newVerifier() *consumer.Verifier {
	return consumer.NewVerifier(map[string]string{testSource: testSecret}, 5*time.Minute)
}

func signedDelivery(t *testing.T, rep notify.DeliveryReport, secret string) (amqp.Delivery, *fakeAcker) {
	t.Helper()

	body, err := json.Marshal(rep)
	require.NoError(t, err)

	acker := &fakeAcker{}
	return amqp.Delivery{
		Acknowledger: acker,
		Body:         body,
		Headers:      consumer.Sign(secret, body, time.Now()),
		MessageId:    notify.NewID(),
	}, acker
}

// consumeOne feeds a single delivery through the loop and waits for shutdown.
func consumeOne(t *testing.T, c *consumer.Consumer, d amqp.Delivery) {
	t.Helper()

	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- d
	close(deliveries)

	require.NoError(t, c.Consume(context.Background(), deliveries))
}

func TestNew(t *testing.T) {
	t.Parallel()

	store := statusstore.NewMemoryStore(statusstore.Config{})

	_, err := consumer.New(nil, newVerifier())
	assert.ErrorIs(t, err, consumer.ErrStoreNil)

	_, err = consumer.New(store, nil)
	assert.ErrorIs(t, err, consumer.ErrVerifierNil)

	c, err := consumer.New(store, newVerifier())
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestConsumer_Consume(t *testing.T) {
	t.Parallel()

	t.Run("valid report is applied and acked", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
		require.NoError(t, store.Create(context.Background(), rec))

		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.acked)
		got, err := store.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusSent, got.Status)
	})

	t.Run("malformed payload is dead-lettered", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		acker := &fakeAcker{}
		consumeOne(t, c, amqp.Delivery{Acknowledger: acker, Body: []byte("{not json")})

		assert.True(t, acker.rejected)
		assert.False(t, acker.requeued, "malformed reports must not be retried")
	})

	t.Run("missing required fields is dead-lettered", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			Status: notify.StatusSent, ReportSeq: 1, Source: testSource, // no id
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.rejected)
		assert.False(t, acker.requeued)
	})

	t.Run("bad signature is rejected without store write", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
		require.NoError(t, store.Create(context.Background(), rec))

		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusDelivered, ReportSeq: 1, Source: testSource,
		}, "wrong-secret")
		consumeOne(t, c, d)

		assert.True(t, acker.rejected)
		got, err := store.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusQueued, got.Status, "spoofed report must not apply")
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: notify.NewID(), Status: notify.StatusSent, ReportSeq: 1, Source: "rogue-worker",
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.rejected)
	})

	t.Run("unknown notification is acked and dropped", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: notify.NewID(), Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.acked, "unknown ids are dropped, not redelivered forever")
		assert.False(t, acker.nacked)
	})

	t.Run("duplicate report is acked as no-op", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		rec := notify.NewRecord(notify.NewID(), notify.ChannelPush, notify.PriorityHigh)
		require.NoError(t, store.Create(context.Background(), rec))
		_, err := store.ApplyReport(context.Background(), notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
		})
		require.NoError(t, err)

		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.acked)
		got, err := store.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.LastReportSeq)
	})

	t.Run("store outage nacks with requeue", func(t *testing.T) {
		t.Parallel()

		c, err := consumer.New(unavailableStore{}, newVerifier())
		require.NoError(t, err)

		d, acker := signedDelivery(t, notify.DeliveryReport{
			ID: notify.NewID(), Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
		}, testSecret)
		consumeOne(t, c, d)

		assert.True(t, acker.nacked)
		assert.True(t, acker.requeued, "transient failures rely on redelivery")
	})

	t.Run("cancellation stops intake", func(t *testing.T) {
		t.Parallel()

		store := statusstore.NewMemoryStore(statusstore.Config{})
		c, err := consumer.New(store, newVerifier())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		deliveries := make(chan amqp.Delivery)

		done := make(chan error, 1)
		go func() { done <- c.Consume(ctx, deliveries) }()

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("consumer did not stop after cancellation")
		}
	})
}

// Out-of-order arrival at the consumer converges to the superseding state.
func TestConsumer_Consume_OutOfOrderReports(t *testing.T) {
	t.Parallel()

	store := statusstore.NewMemoryStore(statusstore.Config{})
	rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityCritical)
	require.NoError(t, store.Create(context.Background(), rec))

	c, err := consumer.New(store, newVerifier())
	require.NoError(t, err)

	delivered, ackDelivered := signedDelivery(t, notify.DeliveryReport{
		ID: rec.ID, Status: notify.StatusDelivered, ReportSeq: 2, Source: testSource,
	}, testSecret)
	sent, ackSent := signedDelivery(t, notify.DeliveryReport{
		ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: testSource,
	}, testSecret)

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- delivered
	deliveries <- sent
	close(deliveries)

	require.NoError(t, c.Consume(context.Background(), deliveries))

	assert.True(t, ackDelivered.acked)
	assert.True(t, ackSent.acked, "stale report is acked, not redelivered")

	got, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusDelivered, got.Status)
	assert.Equal(t, int64(2), got.LastReportSeq)
}
