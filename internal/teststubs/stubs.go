// Package teststubs holds shared test doubles for the provider interfaces.
package teststubs

import (
	"context"
	"sync/atomic"

	"game-deals-service/internal/domain/deals"
)

// StubDealsProvider is a test double for providers.DealsProvider.
type StubDealsProvider struct {
	Deals  []deals.Deal
	Stores map[string]string
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// SearchDeals returns the configured rows and error while tracking calls.
func (s *StubDealsProvider) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	_ = ctx
	_ = title
	s.signal()
	s.Calls.Add(1)
	return s.Deals, s.Err
}

// FetchStores returns the configured directory and error while tracking
// calls.
func (s *StubDealsProvider) FetchStores(ctx context.Context) (map[string]string, error) {
	_ = ctx
	s.signal()
	s.Calls.Add(1)
	return s.Stores, s.Err
}

func (s *StubDealsProvider) signal() {
	if s.Notify == nil {
		return
	}
	select {
	case <-s.Notify:
	default:
		close(s.Notify)
	}
}
