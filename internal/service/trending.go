package service

import (
    "context"

    "github.com/redis/go-redis/v9"
)

// trendingKey is the sorted set holding per-movie booking counters.
const trendingKey = "trending:movies"

// TrendingCounter tracks booking counts per movie title.  Bookings
// increment, cancellations decrement; the counter is advisory data for
// the trending endpoint and never participates in seat decisions.
type TrendingCounter interface {
    Bump(ctx context.Context, movieTitle string, delta int64) error
    Top(ctx context.Context, n int64) ([]string, error)
}

// RedisTrending implements TrendingCounter over a Redis sorted set.
type RedisTrending struct {
    rdb *redis.Client
}

// NewRedisTrending returns a TrendingCounter backed by Redis.
func NewRedisTrending(rdb *redis.Client) *RedisTrending { return &RedisTrending{rdb: rdb} }

// Bump adjusts a movie's booking counter by delta.
func (t *RedisTrending) Bump(ctx context.Context, movieTitle string, delta int64) error {
    return t.rdb.ZIncrBy(ctx, trendingKey, float64(delta), movieTitle).Err()
}

// Top returns the n most-booked movie titles, most popular first.
func (t *RedisTrending) Top(ctx context.Context, n int64) ([]string, error) {
    if n <= 0 {
        n = 10
    }
    return t.rdb.ZRevRange(ctx, trendingKey, 0, n-1).Result()
}

// NoopTrending is used when no Redis client is configured.
type NoopTrending struct{}

func (NoopTrending) Bump(context.Context, string, int64) error   { return nil }
func (NoopTrending) Top(context.Context, int64) ([]string, error) { return nil, nil }
