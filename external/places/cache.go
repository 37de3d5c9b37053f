package places

import (
	"sync"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
)

type cacheEntry struct {
	// info is nil for a cached miss.
	info      *stadiumguide.PlaceInfo
	expiresAt time.Time
}

type placeCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newPlaceCache(ttl time.Duration, maxEntries int) *placeCache {
	return &placeCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *placeCache) Get(key string) (*stadiumguide.PlaceInfo, bool) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.info, true
}

func (c *placeCache) Set(key string, info *stadiumguide.PlaceInfo) {
	if c.ttl <= 0 {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		for k, entry := range c.entries {
			if !entry.expiresAt.After(now) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}

	c.entries[key] = cacheEntry{info: info, expiresAt: now.Add(c.ttl)}
}
