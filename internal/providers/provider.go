package providers

import (
	"context"

	"game-deals-service/internal/domain/deals"
)

// DealProvider defines how upstream deal rows are fetched and normalized.
// The title parameter is a free-text query; providers return every deal row
// whose title resembles it, one row per store.
type DealProvider interface {
	SearchDeals(ctx context.Context, title string) ([]deals.Deal, error)
}

// StoreProvider fetches the storeID -> storeName directory.
type StoreProvider interface {
	FetchStores(ctx context.Context) (map[string]string, error)
}

// DealsProvider combines all provider capabilities.
type DealsProvider interface {
	DealProvider
	StoreProvider
}
