// Package pricecache keeps enrichment results in memory so repeat lookups
// for the same catalog game skip the upstream entirely. Absence of a match
// is cached too, otherwise unmatched games would hammer the provider on
// every page load.
package pricecache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/metrics"
)

// DefaultTTL is how long a cached price result stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

// CacheName identifies this cache in metrics.
const CacheName = "price"

type entry struct {
	info      *deals.PriceInfo
	updatedAt time.Time
}

// Cache is a thread-safe TTL cache of enrichment results keyed by
// normalized title. Expiry is lazy: entries are dropped when a lookup finds
// them stale.
type Cache struct {
	clock   clockwork.Clock
	ttl     time.Duration
	metrics *metrics.Recorder

	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache constructs a Cache. A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration, clock clockwork.Clock, recorder *metrics.Recorder) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		metrics: recorder,
		entries: make(map[string]entry),
	}
}

// Get returns the cached result for a title. ok=false means nothing fresh
// is cached; ok=true with a nil PriceInfo means a remembered "no match".
func (c *Cache) Get(key string) (*deals.PriceInfo, bool) {
	c.mu.Lock()
	e, found := c.entries[key]
	if found && c.expired(e) {
		delete(c.entries, key)
		found = false
	}
	c.mu.Unlock()

	c.metrics.RecordCacheLookup(CacheName, found)
	if !found {
		return nil, false
	}
	return e.info, true
}

// Put stores an enrichment result. A nil info records that no match exists
// for this title.
func (c *Cache) Put(key string, info *deals.PriceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{info: info, updatedAt: c.clock.Now()}
}

// Len reports the number of entries currently held, fresh and stale alike.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

func (c *Cache) expired(e entry) bool {
	return c.clock.Now().Sub(e.updatedAt) >= c.ttl
}
