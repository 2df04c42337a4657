package statusstore

import (
	"context"
	"sync"
	"time"

	"github.com/notifgate/notifgate/pkg/notify"
)

// MemoryStore implements the same contract as RedisStore against in-process
// maps. Intended for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*notify.Record
	keys    map[string]keyEntry
	cfg     Config
}

type keyEntry struct {
	id        string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*notify.Record),
		keys:    make(map[string]keyEntry),
		cfg:     cfg.withDefaults(),
	}
}

// Create stores a fresh record. Existing ids are never overwritten.
func (ms *MemoryStore) Create(_ context.Context, rec notify.Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.records[rec.ID]; ok {
		return ErrAlreadyExists
	}
	clone := rec
	ms.records[rec.ID] = &clone
	return nil
}

// Get returns a copy of the record for id.
func (ms *MemoryStore) Get(_ context.Context, id string) (*notify.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	rec, ok := ms.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// ApplyReport performs one conditional status transition under the store
// mutex, mirroring the atomicity the Redis script provides.
func (ms *MemoryStore) ApplyReport(_ context.Context, rep notify.DeliveryReport) (*notify.Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, ok := ms.records[rep.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if err := rec.ApplyReport(rep, time.Now()); err != nil {
		return nil, err
	}
	clone := *rec
	return &clone, nil
}

// ReserveKey maps an idempotency key to id unless the key is already held.
// It returns the id that owns the key and whether this call reserved it.
func (ms *MemoryStore) ReserveKey(_ context.Context, key, id string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyEmpty
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if entry, ok := ms.keys[key]; ok && time.Now().Before(entry.expiresAt) {
		return entry.id, false, nil
	}
	ms.keys[key] = keyEntry{id: id, expiresAt: time.Now().Add(ms.cfg.IdempotencyTTL)}
	return id, true, nil
}

// ReleaseKey drops a reservation so a failed submission can be retried with
// the same key.
func (ms *MemoryStore) ReleaseKey(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.keys, key)
	return nil
}

// ExpireStale transitions every record still queued before the deadline to
// expired and returns how many were touched.
func (ms *MemoryStore) ExpireStale(_ context.Context, before time.Time) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	expired := 0
	for _, rec := range ms.records {
		if rec.Status == notify.StatusQueued && rec.CreatedAt.Before(before) && rec.Expire(now) {
			expired++
		}
	}
	return expired, nil
}
