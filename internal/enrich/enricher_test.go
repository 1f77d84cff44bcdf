package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/domain/games"
	"game-deals-service/internal/matching"
	"game-deals-service/internal/metrics"
	"game-deals-service/internal/pricecache"
	"game-deals-service/internal/providers"
)

type stubDealProvider struct {
	mu    sync.Mutex
	rows  map[string][]deals.Deal
	errs  map[string]error
	calls map[string]int
}

func newStubDealProvider() *stubDealProvider {
	return &stubDealProvider{
		rows:  make(map[string][]deals.Deal),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (s *stubDealProvider) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[title]++
	if err := s.errs[title]; err != nil {
		return nil, err
	}
	return s.rows[title], nil
}

func (s *stubDealProvider) callCount(title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[title]
}

func (s *stubDealProvider) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

type staticStoreProvider struct {
	stores map[string]string
	err    error
}

func (s *staticStoreProvider) FetchStores(ctx context.Context) (map[string]string, error) {
	_ = ctx
	if s.err != nil {
		return nil, s.err
	}
	return s.stores, nil
}

func newTestEnricher(provider providers.DealProvider, stores providers.StoreProvider, limiter *providers.Limiter, clock clockwork.Clock, cfg Config) (*Enricher, *metrics.Recorder) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rec := metrics.NewRecorder()
	cache := pricecache.NewCache(0, clock, rec)
	var dir *pricecache.StoreDirectory
	if stores != nil {
		dir = pricecache.NewStoreDirectory(stores, 0, clock)
	}
	if cfg.BatchPause == 0 {
		cfg.BatchPause = time.Millisecond
	}
	return New(provider, dir, cache, limiter, clock, nil, rec, cfg), rec
}

func celesteRows() []deals.Deal {
	return []deals.Deal{
		{ExternalGameID: "146", Title: "Celeste", ReleaseDate: "2018-01-25", StoreID: "1", DealID: "d1", SalePrice: 4.99, NormalPrice: 19.99},
		{ExternalGameID: "146", Title: "Celeste", ReleaseDate: "2018-01-25", StoreID: "7", DealID: "d2", SalePrice: 3.99, NormalPrice: 19.99},
		{ExternalGameID: "146", Title: "Celeste", ReleaseDate: "2018-01-25", StoreID: "9", DealID: "d3", SalePrice: 0},
		{ExternalGameID: "999", Title: "Celeste Chess", ReleaseDate: "2020-05-01", StoreID: "1", DealID: "d4", SalePrice: 1.99, NormalPrice: 1.99},
	}
}

func celesteGame() games.Game {
	return games.Game{ID: "g1", Title: "Celeste", ReleaseDate: "2018-01-25", Platforms: []string{"PC (Windows)"}}
}

func TestEnrichOneDerivesPriceSummary(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Celeste"] = celesteRows()
	stores := &staticStoreProvider{stores: map[string]string{"1": "Steam", "7": "GOG"}}
	e, rec := newTestEnricher(sp, stores, nil, nil, Config{})

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if info == nil {
		t.Fatal("expected a price summary")
	}
	if info.BestPrice == nil || *info.BestPrice != 3.99 {
		t.Fatalf("expected best price 3.99, got %+v", info.BestPrice)
	}
	if info.StoreName != "GOG" {
		t.Fatalf("expected headline store GOG, got %s", info.StoreName)
	}
	if info.OriginalPrice == nil || *info.OriginalPrice != 19.99 {
		t.Fatalf("expected original price 19.99, got %+v", info.OriginalPrice)
	}
	if info.DiscountPercent != 80 {
		t.Fatalf("expected 80%% discount, got %d", info.DiscountPercent)
	}
	if info.MatchScore != 1.0 || info.MatchStrategy != "hybrid" {
		t.Fatalf("unexpected match fields %+v", info)
	}

	// Zero-price row dropped, other external game excluded, ascending
	// order.
	if len(info.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(info.Offers))
	}
	if info.Offers[0].Price != 3.99 || info.Offers[1].Price != 4.99 {
		t.Fatalf("expected ascending offers, got %+v", info.Offers)
	}
	if info.Offers[0].RedirectURL == "" && info.Offers[0].DealID != "d2" {
		t.Fatalf("unexpected headline offer %+v", info.Offers[0])
	}

	priced, _, _ := rec.EnrichmentCounts()
	if priced != 1 {
		t.Fatalf("expected 1 priced enrichment recorded, got %d", priced)
	}
}

func TestEnrichOneServesCacheWithoutNetwork(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Celeste"] = celesteRows()
	e, _ := newTestEnricher(sp, nil, nil, nil, Config{})

	if _, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil {
		t.Fatalf("expected cached success, got %v", err)
	}
	if info == nil || *info.BestPrice != 3.99 {
		t.Fatalf("unexpected cached summary %+v", info)
	}
	if sp.callCount("Celeste") != 1 {
		t.Fatalf("expected a single upstream call, got %d", sp.callCount("Celeste"))
	}
}

func TestEnrichOneCachesNoMatch(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Celeste"] = []deals.Deal{
		{ExternalGameID: "1", Title: "Completely Different Game", SalePrice: 9.99},
	}
	e, rec := newTestEnricher(sp, nil, nil, nil, Config{})

	for i := 0; i < 2; i++ {
		info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info != nil {
			t.Fatalf("expected no match, got %+v", info)
		}
	}
	if sp.callCount("Celeste") != 1 {
		t.Fatalf("expected negative result to be cached, got %d calls", sp.callCount("Celeste"))
	}
	_, unmatched, _ := rec.EnrichmentCounts()
	if unmatched != 1 {
		t.Fatalf("expected 1 unmatched enrichment, got %d", unmatched)
	}
}

func TestEnrichOneDoesNotCacheErrors(t *testing.T) {
	sp := newStubDealProvider()
	boom := errors.New("upstream down")
	sp.errs["Celeste"] = boom
	e, _ := newTestEnricher(sp, nil, nil, nil, Config{})

	if _, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	sp.mu.Lock()
	delete(sp.errs, "Celeste")
	sp.rows["Celeste"] = celesteRows()
	sp.mu.Unlock()

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil || info == nil {
		t.Fatalf("expected retry to succeed, got info=%v err=%v", info, err)
	}
	if sp.callCount("Celeste") != 2 {
		t.Fatalf("expected failed attempt not to be cached, got %d calls", sp.callCount("Celeste"))
	}
}

func TestEnrichOneTreatsAllFreeOffersAsNoPrice(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Celeste"] = []deals.Deal{
		{ExternalGameID: "146", Title: "Celeste", StoreID: "1", SalePrice: 0},
	}
	e, _ := newTestEnricher(sp, nil, nil, nil, Config{})

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info != nil {
		t.Fatalf("expected no summary when all offers are non-positive, got %+v", info)
	}
}

func TestEnrichOnePricesWithoutStoreDirectory(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Celeste"] = celesteRows()
	stores := &staticStoreProvider{err: errors.New("directory down")}
	e, _ := newTestEnricher(sp, stores, nil, nil, Config{})

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil || info == nil {
		t.Fatalf("expected summary despite directory failure, got info=%v err=%v", info, err)
	}
	if info.StoreName != "" {
		t.Fatalf("expected empty store name, got %s", info.StoreName)
	}
}

func batchGames(titles ...string) []games.Game {
	list := make([]games.Game, 0, len(titles))
	for i, title := range titles {
		list = append(list, games.Game{
			ID:        string(rune('a' + i)),
			Title:     title,
			Platforms: []string{"PC"},
		})
	}
	return list
}

func TestEnrichManyResolvesBatch(t *testing.T) {
	sp := newStubDealProvider()
	titles := []string{"Alpha Quest", "Beta Quest", "Gamma Quest", "Delta Quest"}
	for i, title := range titles {
		sp.rows[title] = []deals.Deal{
			{ExternalGameID: string(rune('1' + i)), Title: title, StoreID: "1", SalePrice: 9.99},
		}
	}
	e, _ := newTestEnricher(sp, nil, nil, nil, Config{BatchConcurrency: 2})

	list := batchGames(titles...)
	// Pre-resolve one game so the batch only fetches the rest.
	if _, err := e.EnrichOne(context.Background(), list[0], matching.StrategyHybrid); err != nil {
		t.Fatalf("warmup failed: %v", err)
	}

	results := e.EnrichMany(context.Background(), list, matching.StrategyHybrid)
	if len(results) != 4 {
		t.Fatalf("expected 4 priced games, got %d", len(results))
	}
	if sp.callCount("Alpha Quest") != 1 {
		t.Fatalf("expected cached game to skip the provider, got %d calls", sp.callCount("Alpha Quest"))
	}
	for _, g := range list {
		if results[g.ID] == nil || *results[g.ID].BestPrice != 9.99 {
			t.Fatalf("unexpected result for %s: %+v", g.Title, results[g.ID])
		}
	}
}

func TestEnrichManyOmitsFailedGames(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Alpha Quest"] = []deals.Deal{{ExternalGameID: "1", Title: "Alpha Quest", StoreID: "1", SalePrice: 9.99}}
	sp.errs["Beta Quest"] = errors.New("timeout")
	sp.rows["Gamma Quest"] = []deals.Deal{{ExternalGameID: "3", Title: "Gamma Quest", StoreID: "1", SalePrice: 4.99}}
	e, rec := newTestEnricher(sp, nil, nil, nil, Config{BatchConcurrency: 2})

	list := batchGames("Alpha Quest", "Beta Quest", "Gamma Quest")
	results := e.EnrichMany(context.Background(), list, matching.StrategyHybrid)

	if len(results) != 2 {
		t.Fatalf("expected 2 priced games, got %d", len(results))
	}
	if _, ok := results["b"]; ok {
		t.Fatal("expected failed game to be omitted")
	}
	if sp.callCount("Gamma Quest") != 1 {
		t.Fatal("a single failing game must not abort the batch")
	}
	_, _, failed := rec.EnrichmentCounts()
	if failed != 1 {
		t.Fatalf("expected 1 failed enrichment recorded, got %d", failed)
	}
}

func TestEnrichManyAbandonsOnRateLimit(t *testing.T) {
	fcLimiter := providers.NewLimiter(10, 6*time.Second, clockwork.NewFakeClock())
	sp := newStubDealProvider()
	sp.errs["Alpha Quest"] = &providers.RateLimitError{Provider: "test", StatusCode: 429}
	sp.errs["Beta Quest"] = &providers.RateLimitError{Provider: "test", StatusCode: 429}
	sp.rows["Gamma Quest"] = []deals.Deal{{ExternalGameID: "3", Title: "Gamma Quest", StoreID: "1", SalePrice: 4.99}}
	sp.rows["Delta Quest"] = []deals.Deal{{ExternalGameID: "4", Title: "Delta Quest", StoreID: "1", SalePrice: 4.99}}
	e, _ := newTestEnricher(sp, nil, fcLimiter, nil, Config{BatchConcurrency: 2})

	list := batchGames("Alpha Quest", "Beta Quest", "Gamma Quest", "Delta Quest")
	results := e.EnrichMany(context.Background(), list, matching.StrategyHybrid)

	if len(results) != 0 {
		t.Fatalf("expected no results after rate-limited first batch, got %+v", results)
	}
	if sp.callCount("Gamma Quest") != 0 || sp.callCount("Delta Quest") != 0 {
		t.Fatal("expected remaining batches to be abandoned")
	}
	if blocked, _ := fcLimiter.Blocked(); !blocked {
		t.Fatal("expected circuit breaker to open")
	}

	// The rate-limited titles are remembered as misses; a later lookup
	// answers from the cache instead of re-querying the upstream.
	if info, err := e.EnrichOne(context.Background(), games.Game{ID: "a", Title: "Alpha Quest"}, matching.StrategyHybrid); err != nil || info != nil {
		t.Fatalf("expected cached miss, got info=%v err=%v", info, err)
	}
	if sp.callCount("Alpha Quest") != 1 {
		t.Fatalf("expected no second upstream call for cached miss, got %d", sp.callCount("Alpha Quest"))
	}
}

func TestEnrichOneCachesMissWhenRateLimitExhausted(t *testing.T) {
	limiter := providers.NewLimiter(10, 6*time.Second, clockwork.NewFakeClock())
	sp := newStubDealProvider()
	sp.errs["Celeste"] = &providers.RateLimitError{Provider: "test", StatusCode: 429}
	e, rec := newTestEnricher(sp, nil, limiter, nil, Config{})

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil {
		t.Fatalf("expected a degraded nil result instead of an error, got %v", err)
	}
	if info != nil {
		t.Fatalf("expected no price after exhausted rate limit, got %+v", info)
	}
	if blocked, _ := limiter.Blocked(); !blocked {
		t.Fatal("expected circuit breaker to open")
	}

	if info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid); err != nil || info != nil {
		t.Fatalf("expected cached miss on second lookup, got info=%v err=%v", info, err)
	}
	if sp.callCount("Celeste") != 1 {
		t.Fatalf("expected the miss to be cached after one upstream call, got %d", sp.callCount("Celeste"))
	}
	_, _, failed := rec.EnrichmentCounts()
	if failed != 1 {
		t.Fatalf("expected 1 failed enrichment recorded, got %d", failed)
	}
}

func TestEnrichOneSkipsWithoutCachingWhileBlocked(t *testing.T) {
	sp := newStubDealProvider()
	sp.errs["Celeste"] = &providers.BlockedError{Provider: "test", Until: time.Now().Add(time.Hour)}
	e, _ := newTestEnricher(sp, nil, nil, nil, Config{})

	info, err := e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil || info != nil {
		t.Fatalf("expected prompt nil result while blocked, got info=%v err=%v", info, err)
	}

	// The block is transient: nothing is cached, so the title is
	// retried once the breaker closes.
	sp.mu.Lock()
	delete(sp.errs, "Celeste")
	sp.rows["Celeste"] = celesteRows()
	sp.mu.Unlock()

	info, err = e.EnrichOne(context.Background(), celesteGame(), matching.StrategyHybrid)
	if err != nil || info == nil {
		t.Fatalf("expected retry to succeed after block, got info=%v err=%v", info, err)
	}
	if sp.callCount("Celeste") != 2 {
		t.Fatalf("expected the blocked attempt not to be cached, got %d calls", sp.callCount("Celeste"))
	}
}

func TestEnrichManySkipsFetchesWhileBreakerOpen(t *testing.T) {
	limiter := providers.NewLimiter(10, 6*time.Second, clockwork.NewFakeClock())
	limiter.Block(time.Hour)
	sp := newStubDealProvider()
	e, _ := newTestEnricher(sp, nil, limiter, nil, Config{BatchConcurrency: 2})

	results := e.EnrichMany(context.Background(), batchGames("Alpha Quest", "Beta Quest"), matching.StrategyHybrid)

	if len(results) != 0 {
		t.Fatalf("expected no results while blocked, got %+v", results)
	}
	if sp.totalCalls() != 0 {
		t.Fatalf("expected no upstream calls while blocked, got %d", sp.totalCalls())
	}
}

func TestEnrichManyStopsAtBudget(t *testing.T) {
	fc := clockwork.NewFakeClock()
	sp := newStubDealProvider()
	titles := []string{"Alpha Quest", "Beta Quest", "Gamma Quest", "Delta Quest"}
	for i, title := range titles {
		sp.rows[title] = []deals.Deal{
			{ExternalGameID: string(rune('1' + i)), Title: title, StoreID: "1", SalePrice: 9.99},
		}
	}
	e, _ := newTestEnricher(sp, nil, nil, fc, Config{
		BatchConcurrency: 2,
		BatchPause:       30 * time.Second,
		Budget:           10 * time.Second,
	})

	done := make(chan map[string]*deals.PriceInfo, 1)
	go func() {
		done <- e.EnrichMany(context.Background(), batchGames(titles...), matching.StrategyHybrid)
	}()

	// The first batch completes instantly; the inter-batch pause then
	// carries the clock past the budget.
	fc.BlockUntil(1)
	fc.Advance(time.Minute)

	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("expected only the first batch to resolve, got %d", len(results))
		}
		if sp.callCount("Gamma Quest") != 0 || sp.callCount("Delta Quest") != 0 {
			t.Fatal("expected no fetches after the budget expired")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("EnrichMany did not return")
	}
}

func TestEnrichManyHonorsContextCancel(t *testing.T) {
	sp := newStubDealProvider()
	sp.rows["Alpha Quest"] = []deals.Deal{{ExternalGameID: "1", Title: "Alpha Quest", StoreID: "1", SalePrice: 9.99}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := newTestEnricher(sp, nil, nil, nil, Config{})
	results := e.EnrichMany(ctx, batchGames("Alpha Quest"), matching.StrategyHybrid)
	if len(results) != 0 {
		t.Fatalf("expected no results with canceled context, got %+v", results)
	}
	if sp.totalCalls() != 0 {
		t.Fatalf("expected no upstream calls, got %d", sp.totalCalls())
	}
}
