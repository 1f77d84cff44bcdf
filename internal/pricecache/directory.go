package pricecache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"game-deals-service/internal/providers"
)

// DefaultDirectoryTTL is how long a fetched store directory stays fresh.
// Store listings change rarely, so a short TTL just wastes request budget.
const DefaultDirectoryTTL = time.Hour

// StoreDirectory is a fetch-through cache of the upstream's storeID to
// store-name mapping. A fetch failure falls back to the previous copy when
// one exists, stale or not.
type StoreDirectory struct {
	provider providers.StoreProvider
	clock    clockwork.Clock
	ttl      time.Duration

	mu        sync.Mutex
	stores    map[string]string
	fetchedAt time.Time
}

// NewStoreDirectory constructs a StoreDirectory over the given provider. A
// non-positive ttl falls back to DefaultDirectoryTTL.
func NewStoreDirectory(provider providers.StoreProvider, ttl time.Duration, clock clockwork.Clock) *StoreDirectory {
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StoreDirectory{
		provider: provider,
		clock:    clock,
		ttl:      ttl,
	}
}

// Name resolves a store ID to its display name, fetching the directory if
// needed. Unknown IDs resolve to the empty string.
func (d *StoreDirectory) Name(ctx context.Context, storeID string) (string, error) {
	stores, err := d.Stores(ctx)
	if err != nil {
		return "", err
	}
	return stores[storeID], nil
}

// Stores returns the current directory, refreshing it when the cached copy
// has expired.
func (d *StoreDirectory) Stores(ctx context.Context) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if d.stores != nil && now.Sub(d.fetchedAt) < d.ttl {
		return d.stores, nil
	}

	if d.provider == nil {
		if d.stores != nil {
			return d.stores, nil
		}
		return nil, providers.ErrProviderUnavailable
	}

	fresh, err := d.provider.FetchStores(ctx)
	if err != nil {
		if d.stores != nil {
			return d.stores, nil
		}
		return nil, err
	}

	d.stores = fresh
	d.fetchedAt = now
	return d.stores, nil
}
