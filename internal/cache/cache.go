package cache

import (
	"sync"
	"time"

	"trendscope/internal/news"
)

type entry struct {
	value     *news.AggregatedResponse
	expiresAt time.Time
}

// Cache is the per-process result cache. Keys are category names or the
// "all" sentinel. TTL expiry only; no capacity bound.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

// AllKey is the cache key for the cross-category aggregate.
const AllKey = "all"

func New() *Cache {
	c := &Cache{
		items: make(map[string]entry),
	}

	// Cleanup expired items periodically
	go c.cleanupLoop()

	return c
}

func (c *Cache) Set(key string, value *news.AggregatedResponse, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *Cache) Get(key string) (*news.AggregatedResponse, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
