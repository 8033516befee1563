package application

import (
	"sync"
	"time"
)

// departmentCache remembers recent department existence lookups so meeting and
// calendar validation does not hit storage for every department id.
type departmentCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]departmentCacheEntry
}

type departmentCacheEntry struct {
	exists    bool
	expiresAt time.Time
}

func newDepartmentCache(ttl time.Duration, maxEntries int, now func() time.Time) *departmentCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &departmentCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]departmentCacheEntry),
	}
}

func (c *departmentCache) Get(id string) (exists bool, ok bool) {
	if c == nil {
		return false, false
	}
	c.mu.RLock()
	entry, found := c.entries[id]
	c.mu.RUnlock()
	if !found {
		return false, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return false, false
	}
	return entry.exists, true
}

func (c *departmentCache) Store(id string, exists bool) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[id] = departmentCacheEntry{exists: exists, expiresAt: expiry}
}

func (c *departmentCache) Forget(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *departmentCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]departmentCacheEntry)
	c.mu.Unlock()
}

func (c *departmentCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *departmentCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
