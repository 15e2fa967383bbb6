package memory

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// TemplateCache is a read-through TTL cache for template content and company settings.
// Freshness is judged with the injected clock; go-cache's own expiry only reclaims memory.
type TemplateCache struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewTemplateCache(ttl time.Duration, now func() time.Time) *TemplateCache {
	if now == nil {
		now = time.Now
	}
	// Entries live twice the TTL in go-cache so the clock check stays authoritative,
	// purged every 10 minutes
	c := cache.New(2*ttl, 10*time.Minute)
	return &TemplateCache{
		cache: c,
		ttl:   ttl,
		now:   now,
	}
}

func (c *TemplateCache) Get(key string) (interface{}, bool) {
	x, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	entry := x.(cacheEntry)
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.cache.Delete(key)
		return nil, false
	}
	return entry.value, true
}

func (c *TemplateCache) Set(key string, value interface{}) {
	c.cache.Set(key, cacheEntry{value: value, storedAt: c.now()}, cache.DefaultExpiration)
}

// DeletePrefix removes every entry whose key starts with prefix and reports how many went.
func (c *TemplateCache) DeletePrefix(prefix string) int {
	removed := 0
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
			removed++
		}
	}
	return removed
}
