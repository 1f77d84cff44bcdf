// Package fixture is a static deals provider for local development and the
// offline evaluation CLI, so neither needs network access or an upstream
// quota.
package fixture

import (
	"context"
	"strings"

	"game-deals-service/internal/domain/deals"
)

// ProviderName identifies this provider in logs and metrics.
const ProviderName = "fixture"

// Provider serves a deterministic deal catalog filtered by title substring,
// mimicking the upstream's free-text search.
type Provider struct {
	rows   []deals.Deal
	stores map[string]string
}

// New creates a fixture provider with the built-in catalog.
func New() *Provider {
	return &Provider{
		rows:   defaultRows(),
		stores: defaultStores(),
	}
}

// NewWithCatalog creates a fixture provider over a custom catalog.
func NewWithCatalog(rows []deals.Deal, stores map[string]string) *Provider {
	return &Provider{rows: rows, stores: stores}
}

// SearchDeals returns catalog rows whose title contains the query,
// case-insensitively. An empty query returns nothing, like the upstream.
func (p *Provider) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	_ = ctx

	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil, nil
	}

	var result []deals.Deal
	for _, row := range p.rows {
		if containsAnyWord(strings.ToLower(row.Title), needle) {
			result = append(result, row)
		}
	}
	return result, nil
}

// FetchStores returns the fixture store directory.
func (p *Provider) FetchStores(ctx context.Context) (map[string]string, error) {
	_ = ctx

	stores := make(map[string]string, len(p.stores))
	for id, name := range p.stores {
		stores[id] = name
	}
	return stores, nil
}

// containsAnyWord reports whether any word of the query appears in the
// title, which approximates the upstream's loose matching closely enough
// for fixtures.
func containsAnyWord(title, query string) bool {
	for _, word := range strings.Fields(query) {
		if strings.Contains(title, word) {
			return true
		}
	}
	return false
}

func defaultRows() []deals.Deal {
	return []deals.Deal{
		{ExternalGameID: "101", Title: "Hollow Knight", ReleaseDate: "2017-02-24", StoreID: "1", DealID: "fixture-hk-steam", SalePrice: 7.49, NormalPrice: 14.99, Savings: 50.0},
		{ExternalGameID: "101", Title: "Hollow Knight", ReleaseDate: "2017-02-24", StoreID: "7", DealID: "fixture-hk-gog", SalePrice: 9.89, NormalPrice: 14.99, Savings: 34.0},
		{ExternalGameID: "102", Title: "Celeste", ReleaseDate: "2018-01-25", StoreID: "1", DealID: "fixture-celeste-steam", SalePrice: 4.99, NormalPrice: 19.99, Savings: 75.0},
		{ExternalGameID: "103", Title: "Hades", ReleaseDate: "2020-09-17", StoreID: "1", DealID: "fixture-hades-steam", SalePrice: 12.49, NormalPrice: 24.99, Savings: 50.0},
		{ExternalGameID: "104", Title: "Hades II", ReleaseDate: "2024-05-06", StoreID: "1", DealID: "fixture-hades2-steam", SalePrice: 29.99, NormalPrice: 29.99},
		{ExternalGameID: "105", Title: "Tomb Raider Anniversary GOTY Edition", ReleaseDate: "2008-06-05", StoreID: "1", DealID: "fixture-tra-steam", SalePrice: 8.99, NormalPrice: 8.99},
		{ExternalGameID: "106", Title: "Diablo IV", ReleaseDate: "2023-06-05", StoreID: "31", DealID: "fixture-d4-bnet", SalePrice: 34.99, NormalPrice: 69.99, Savings: 50.0},
	}
}

func defaultStores() map[string]string {
	return map[string]string{
		"1":  "Steam",
		"7":  "GOG",
		"31": "Blizzard Shop",
	}
}
