package market

import (
	"sync"
	"time"
)

// ttlCache is a small concurrent cache for resolved estimates, keyed by
// normalized location. Entries expire purely by TTL; query volume is low
// enough that no size bound is needed.
type ttlCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[string]cacheEntry
}

type cacheEntry struct {
	estimate PriceEstimate
	storedAt time.Time
}

func newTTLCache(ttl time.Duration, now func() time.Time) *ttlCache {
	if now == nil {
		now = time.Now
	}
	return &ttlCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (PriceEstimate, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return PriceEstimate{}, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		// Expired. Eviction happens lazily on the next put.
		return PriceEstimate{}, false
	}
	return entry.estimate, true
}

func (c *ttlCache) put(key string, estimate PriceEstimate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{estimate: estimate, storedAt: now}
}
