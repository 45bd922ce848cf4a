package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/redis/go-redis/v9"
)

const globalStatsKey = "monetag:stats:global"

// DefaultStatsCacheTTL is how long cached global counters stay valid.
const DefaultStatsCacheTTL = 30 * time.Second

// StatsCache stores the latest global counters between dashboard refreshes.
type StatsCache interface {
	Get(ctx context.Context) (model.GlobalStats, bool, error)
	Set(ctx context.Context, stats model.GlobalStats) error
	Invalidate(ctx context.Context) error
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache returns a StatsCache that keeps entries for ttl.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	return &redisStatsCache{client: client, ttl: ttl}
}

func (c *redisStatsCache) Get(ctx context.Context) (model.GlobalStats, bool, error) {
	var stats model.GlobalStats
	raw, err := c.client.Get(ctx, globalStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return stats, false, nil
		}
		return stats, false, err
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return stats, false, err
	}
	return stats, true, nil
}

func (c *redisStatsCache) Set(ctx context.Context, stats model.GlobalStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, globalStatsKey, raw, c.ttl).Err()
}

func (c *redisStatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, globalStatsKey).Err()
}
