package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the single-process ResponseCache.
type MemoryCache struct {
	cache *gocache.Cache
}

// Ensure MemoryCache implements ResponseCache
var _ ResponseCache = &MemoryCache{}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(ttl, 10*time.Minute)}
}

func (c *MemoryCache) Get(_ context.Context, prompt string, companyId uuid.UUID, model string) (string, bool, error) {
	x, found := c.cache.Get(Key(prompt, companyId, model))
	if !found {
		return "", false, nil
	}
	return x.(string), true, nil
}

func (c *MemoryCache) Set(_ context.Context, prompt, response string, companyId uuid.UUID, model string) error {
	c.cache.SetDefault(Key(prompt, companyId, model), response)
	if model != "" {
		c.cache.SetDefault(Key(prompt, companyId, ""), response)
	}
	return nil
}
