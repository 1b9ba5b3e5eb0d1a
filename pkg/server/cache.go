package server

import (
	"sync"
	"time"

	"rfm-dashboard/pkg/models"
)

// resultCache keeps computed dashboards per date range for ttl.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	dashboard models.Dashboard
	fetchedAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, entries: map[string]cacheEntry{}, now: time.Now}
}

func (c *resultCache) get(key string) (models.Dashboard, bool) {
	if c.ttl <= 0 {
		return models.Dashboard{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.dashboard, true
	}
	return models.Dashboard{}, false
}

func (c *resultCache) set(key string, d models.Dashboard) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{dashboard: d, fetchedAt: now}
}
