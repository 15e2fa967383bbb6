package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Ensure RedisCache implements ResponseCache
var _ ResponseCache = &RedisCache{}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, prompt string, companyId uuid.UUID, model string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, Key(prompt, companyId, model)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set writes the model-specific entry and the any-model entry in one round trip.
func (c *RedisCache) Set(ctx context.Context, prompt, response string, companyId uuid.UUID, model string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, Key(prompt, companyId, model), response, c.ttl)
	if model != "" {
		pipe.Set(ctx, Key(prompt, companyId, ""), response, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
