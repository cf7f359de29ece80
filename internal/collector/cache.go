package collector

import (
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/telemetry"
)

// snapshotCache absorbs bursty repeated polling (several UI tabs refreshing
// at once) without hammering the rate-sensitive remote system. Entries older
// than the TTL are treated as misses; there is no in-flight de-duplication,
// concurrent misses for the same key may both collect and the newer write
// wins.
type snapshotCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snapshot telemetry.Snapshot
	storedAt time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *snapshotCache) get(key string) (telemetry.Snapshot, bool) {
	if c.ttl <= 0 {
		return telemetry.Snapshot{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return telemetry.Snapshot{}, false
	}

	return entry.snapshot, true
}

func (c *snapshotCache) set(key string, snapshot telemetry.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		snapshot: snapshot,
		storedAt: time.Now(),
	}
}
