package statusstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notifgate/notifgate/pkg/notify"
)

const (
	recordKeyPrefix = "notification:"
	idemKeyPrefix   = "idempotency:"
	queuedIndexKey  = "notifications:queued"

	expireBatchSize = 256
)

// createScript writes a fresh record and its queued-index entry as one
// atomic unit so a record can never exist without being reachable by the
// TTL sweep. An already-allocated id is never overwritten.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 'exists'
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', tonumber(ARGV[2]))
redis.call('ZADD', KEYS[2], tonumber(ARGV[3]), ARGV[4])
return 'ok'
`)

// applyReportScript performs the full conditional transition server-side:
// load record, reject terminal/stale/invalid, rewrite the record preserving
// its TTL and drop it from the queued index. Running it as one script is
// what makes two racing reports for the same id safe without locks.
var applyReportScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 'not_found'
end
local rec = cjson.decode(raw)
if rec.status == 'delivered' or rec.status == 'failed' or rec.status == 'expired' then
  return 'terminal'
end
local seq = tonumber(ARGV[2])
if seq <= (tonumber(rec.last_report_seq) or 0) then
  return 'stale'
end
local to = ARGV[1]
local ok = false
if to == 'sent' then
  ok = rec.status == 'queued'
elseif to == 'delivered' or to == 'failed' then
  ok = rec.status == 'queued' or rec.status == 'sent'
end
if not ok then
  return 'invalid'
end
rec.status = to
rec.last_report_seq = seq
rec.updated_at = ARGV[4]
if ARGV[3] ~= '' then
  rec.detail = ARGV[3]
end
local encoded = cjson.encode(rec)
local ttl = redis.call('TTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], encoded, 'EX', ttl)
else
  redis.call('SET', KEYS[1], encoded)
end
redis.call('ZREM', KEYS[2], rec.id)
return encoded
`)

// expireScript moves a record to expired only if it is still queued.
var expireScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 'gone'
end
local rec = cjson.decode(raw)
if rec.status ~= 'queued' then
  return 'skip'
end
rec.status = 'expired'
rec.updated_at = ARGV[1]
local encoded = cjson.encode(rec)
local ttl = redis.call('TTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], encoded, 'EX', ttl)
else
  redis.call('SET', KEYS[1], encoded)
end
return 'expired'
`)

// RedisStore is the production status store backed by a shared Redis
// instance. All mutations are conditional writes executed server-side.
type RedisStore struct {
	rdb redis.UniversalClient
	cfg Config
}

// NewRedisStore wraps an established client. Connection management belongs
// to the caller; see pkg/redisconn.
func NewRedisStore(rdb redis.UniversalClient, cfg Config) *RedisStore {
	return &RedisStore{rdb: rdb, cfg: cfg.withDefaults()}
}

func recordKey(id string) string { return recordKeyPrefix + id }

// Create stores a fresh record and enrolls it in the queued index in a
// single script; see createScript.
func (rs *RedisStore) Create(ctx context.Context, rec notify.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}

	res, err := createScript.Run(ctx, rs.rdb,
		[]string{recordKey(rec.ID), queuedIndexKey},
		payload,
		int64(rs.cfg.RecordTTL.Seconds()),
		rec.CreatedAt.Unix(),
		rec.ID,
	).Text()
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if res == "exists" {
		return ErrAlreadyExists
	}
	return nil
}

// Get returns the current record for id.
func (rs *RedisStore) Get(ctx context.Context, id string) (*notify.Record, error) {
	raw, err := rs.rdb.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	var rec notify.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", id, err)
	}
	return &rec, nil
}

// ApplyReport runs the compare-and-set transition script and returns the
// updated record on success.
func (rs *RedisStore) ApplyReport(ctx context.Context, rep notify.DeliveryReport) (*notify.Record, error) {
	res, err := applyReportScript.Run(ctx, rs.rdb,
		[]string{recordKey(rep.ID), queuedIndexKey},
		string(rep.Status),
		strconv.FormatInt(rep.ReportSeq, 10),
		rep.Detail,
		time.Now().UTC().Format(time.RFC3339Nano),
	).Text()
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	switch res {
	case "not_found":
		return nil, ErrNotFound
	case "terminal":
		return nil, notify.ErrTerminalState
	case "stale":
		return nil, notify.ErrStaleReport
	case "invalid":
		return nil, notify.ErrInvalidTransition
	}

	var rec notify.Record
	if err := json.Unmarshal([]byte(res), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s after transition: %w", rep.ID, err)
	}
	return &rec, nil
}

// ReserveKey atomically maps an idempotency key to id unless the key is
// already held within its TTL window. It returns the owning id and whether
// this call won the reservation.
func (rs *RedisStore) ReserveKey(ctx context.Context, key, id string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyEmpty
	}

	prev, err := rs.rdb.SetArgs(ctx, idemKeyPrefix+key, id, redis.SetArgs{
		Mode: "NX",
		Get:  true,
		TTL:  rs.cfg.IdempotencyTTL,
	}).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// No previous holder, the reservation is ours.
		return id, true, nil
	case err != nil:
		return "", false, errors.Join(ErrUnavailable, err)
	default:
		return prev, false, nil
	}
}

// ReleaseKey frees a reservation after a failed submission so the caller can
// retry with the same key.
func (rs *RedisStore) ReleaseKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	if err := rs.rdb.Del(ctx, idemKeyPrefix+key).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// ExpireStale expires queued records created before the deadline, working
// through the queued index in bounded batches.
func (rs *RedisStore) ExpireStale(ctx context.Context, before time.Time) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	expired := 0

	for {
		ids, err := rs.rdb.ZRangeByScore(ctx, queuedIndexKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   strconv.FormatInt(before.Unix(), 10),
			Count: expireBatchSize,
		}).Result()
		if err != nil {
			return expired, errors.Join(ErrUnavailable, err)
		}
		if len(ids) == 0 {
			return expired, nil
		}

		for _, id := range ids {
			res, err := expireScript.Run(ctx, rs.rdb, []string{recordKey(id)}, now).Text()
			if err != nil {
				return expired, errors.Join(ErrUnavailable, err)
			}
			if res == "expired" {
				expired++
			}
			// Whatever the outcome, the id no longer belongs in the
			// queued index: expired, already transitioned, or evicted.
			if err := rs.rdb.ZRem(ctx, queuedIndexKey, id).Err(); err != nil {
				return expired, errors.Join(ErrUnavailable, err)
			}
		}

		if len(ids) < expireBatchSize {
			return expired, nil
		}
	}
}
