package statusstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifgate/notifgate/pkg/notify"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

func newStore(t *testing.T) *statusstore.MemoryStore {
	t.Helper()
	return statusstore.NewMemoryStore(statusstore.Config{})
}

func TestMemoryStore_CreateGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityCritical)
		require.NoError(t, store.Create(ctx, rec))

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec, *got)
	})

	t.Run("ids are never overwritten", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelPush, notify.PriorityLow)
		require.NoError(t, store.Create(ctx, rec))
		assert.ErrorIs(t, store.Create(ctx, rec), statusstore.ErrAlreadyExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		_, err := store.Get(ctx, notify.NewID())
		assert.ErrorIs(t, err, statusstore.ErrNotFound)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
		require.NoError(t, store.Create(ctx, rec))

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		got.Status = notify.StatusFailed

		again, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusQueued, again.Status)
	})
}

func TestMemoryStore_ApplyReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("transition and persistence", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
		require.NoError(t, store.Create(ctx, rec))

		updated, err := store.ApplyReport(ctx, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: "email-worker",
		})
		require.NoError(t, err)
		assert.Equal(t, notify.StatusSent, updated.Status)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusSent, got.Status)
		assert.Equal(t, int64(1), got.LastReportSeq)
	})

	t.Run("unknown notification", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		_, err := store.ApplyReport(ctx, notify.DeliveryReport{
			ID: notify.NewID(), Status: notify.StatusSent, ReportSeq: 1, Source: "email-worker",
		})
		assert.ErrorIs(t, err, statusstore.ErrNotFound)
	})

	t.Run("stale report leaves record untouched", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelSMS, notify.PriorityHigh)
		require.NoError(t, store.Create(ctx, rec))

		_, err := store.ApplyReport(ctx, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 2, Source: "sms-worker",
		})
		require.NoError(t, err)

		_, err = store.ApplyReport(ctx, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusDelivered, ReportSeq: 1, Source: "sms-worker",
		})
		assert.ErrorIs(t, err, notify.ErrStaleReport)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusSent, got.Status)
		assert.Equal(t, int64(2), got.LastReportSeq)
	})

	t.Run("terminal record rejects later reports", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		rec := notify.NewRecord(notify.NewID(), notify.ChannelSMS, notify.PriorityHigh)
		require.NoError(t, store.Create(ctx, rec))

		_, err := store.ApplyReport(ctx, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusDelivered, ReportSeq: 2, Source: "sms-worker",
		})
		require.NoError(t, err)

		_, err = store.ApplyReport(ctx, notify.DeliveryReport{
			ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: "sms-worker",
		})
		assert.ErrorIs(t, err, notify.ErrTerminalState)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, notify.StatusDelivered, got.Status)
		assert.Equal(t, int64(2), got.LastReportSeq)
	})
}

// Concurrent reports for one id must never leave a torn record: the final
// state has to be one of the reported statuses with its matching sequence.
func TestMemoryStore_ApplyReport_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(t)
	rec := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
	require.NoError(t, store.Create(ctx, rec))

	reports := []notify.DeliveryReport{
		{ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: "w"},
		{ID: rec.ID, Status: notify.StatusDelivered, ReportSeq: 2, Source: "w"},
		{ID: rec.ID, Status: notify.StatusSent, ReportSeq: 1, Source: "w"}, // duplicate
	}

	var wg sync.WaitGroup
	for _, rep := range reports {
		rep := rep
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.ApplyReport(ctx, rep)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusDelivered, got.Status)
	assert.Equal(t, int64(2), got.LastReportSeq)
}

func TestMemoryStore_IdempotencyKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first reservation wins", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		first := notify.NewID()
		second := notify.NewID()

		owner, reserved, err := store.ReserveKey(ctx, "req-1", first)
		require.NoError(t, err)
		assert.True(t, reserved)
		assert.Equal(t, first, owner)

		owner, reserved, err = store.ReserveKey(ctx, "req-1", second)
		require.NoError(t, err)
		assert.False(t, reserved)
		assert.Equal(t, first, owner)
	})

	t.Run("released key can be reserved again", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		first := notify.NewID()
		second := notify.NewID()

		_, _, err := store.ReserveKey(ctx, "req-2", first)
		require.NoError(t, err)
		require.NoError(t, store.ReleaseKey(ctx, "req-2"))

		owner, reserved, err := store.ReserveKey(ctx, "req-2", second)
		require.NoError(t, err)
		assert.True(t, reserved)
		assert.Equal(t, second, owner)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		_, _, err := store.ReserveKey(ctx, "", notify.NewID())
		assert.ErrorIs(t, err, statusstore.ErrKeyEmpty)
		assert.ErrorIs(t, store.ReleaseKey(ctx, ""), statusstore.ErrKeyEmpty)
	})
}

func TestMemoryStore_ExpireStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(t)

	stale := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, stale))

	fresh := notify.NewRecord(notify.NewID(), notify.ChannelEmail, notify.PriorityNormal)
	require.NoError(t, store.Create(ctx, fresh))

	sent := notify.NewRecord(notify.NewID(), notify.ChannelPush, notify.PriorityNormal)
	sent.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, sent))
	_, err := store.ApplyReport(ctx, notify.DeliveryReport{
		ID: sent.ID, Status: notify.StatusSent, ReportSeq: 1, Source: "push-worker",
	})
	require.NoError(t, err)

	expired, err := store.ExpireStale(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusExpired, got.Status)

	got, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusQueued, got.Status)

	got, err = store.Get(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, got.Status)
}
