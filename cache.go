package impactful

import (
	"sync"
	"time"
)

// SnapshotCache keeps the last successfully assembled homepage for a TTL.
// Publisher invalidates it after every mutation.
type SnapshotCache struct {
	mu      sync.RWMutex
	home    *HomePage
	fetched time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a cache holding snapshots for ttl. A ttl <= 0
// disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, now: time.Now}
}

func (c *SnapshotCache) valid() bool {
	return c.home != nil && c.now().Sub(c.fetched) < c.ttl
}

// Home returns the cached homepage if it is still fresh.
func (c *SnapshotCache) Home() (HomePage, bool) {
	if c == nil {
		return HomePage{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid() {
		return HomePage{}, false
	}
	return *c.home, true
}

// StoreHome replaces the cached homepage.
func (c *SnapshotCache) StoreHome(page HomePage) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.home = &page
	c.fetched = c.now()
	c.mu.Unlock()
}

// Invalidate clears the cache so the next read goes to the store.
func (c *SnapshotCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.home = nil
	c.mu.Unlock()
}
