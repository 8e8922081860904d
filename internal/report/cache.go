package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"jobmate/visibility-service/internal/model"
	"jobmate/visibility-service/internal/visibility"
)

// Cache memoizes decision sets. Entries are keyed on both the snapshot and
// the day they were computed for; see SnapshotKey.
type Cache interface {
	Get(ctx context.Context, key string) ([]visibility.RecordVisibility, bool, error)
	Set(ctx context.Context, key string, v []visibility.RecordVisibility) error
}

// SnapshotKey fingerprints snap for day. Any change to the records, their
// order, or the day yields a different key.
func SnapshotKey(snap model.Snapshot, day time.Time) string {
	b, _ := json.Marshal(snap)
	return "visibility:" + strconv.FormatUint(xxhash.Sum64(b), 16) + ":" + model.FormatDate(day)
}

// RedisCache stores decision sets as JSON strings with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache returns a RedisCache writing entries that live for ttl.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached decisions for key, if any.
func (c *RedisCache) Get(ctx context.Context, key string) ([]visibility.RecordVisibility, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var out []visibility.RecordVisibility
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached decisions: %w", err)
	}
	return out, true, nil
}

// Set stores v under key.
func (c *RedisCache) Set(ctx context.Context, key string, v []visibility.RecordVisibility) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode decisions: %w", err)
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
