// Package cache provides the read-through cache used for ticket and
// seat-map reads.  The cache is purely an optimization layer: it is
// never consulted for seat availability decisions, which always go to
// the durable store under lock.
package cache

import (
    "context"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL-based byte cache.  Delete must be a no-op for absent
// keys so invalidation never fails a commit.
type Cache interface {
    Get(ctx context.Context, key string) ([]byte, error)
    Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
    Delete(ctx context.Context, keys ...string) error
}

// Redis implements Cache over a Redis client.
type Redis struct {
    rdb *redis.Client
}

// NewRedis returns a Redis-backed cache.
func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
    v, err := c.rdb.Get(ctx, key).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, ErrMiss
    }
    return v, err
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
    return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
    if len(keys) == 0 {
        return nil
    }
    return c.rdb.Del(ctx, keys...).Err()
}

// Noop is the cache used when no Redis client is configured.  Every
// read misses and writes are discarded, so callers degrade gracefully
// to the durable store.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)                  { return nil, ErrMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error     { return nil }
func (Noop) Delete(context.Context, ...string) error                      { return nil }
