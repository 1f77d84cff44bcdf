// Package enrich orchestrates price enrichment for canonical games: cache
// lookup, candidate fetch through the rate-limited provider, best-match
// selection and price derivation.
package enrich

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/domain/games"
	"game-deals-service/internal/logging"
	"game-deals-service/internal/matching"
	"game-deals-service/internal/metrics"
	"game-deals-service/internal/pricecache"
	"game-deals-service/internal/providers"
)

const (
	defaultBatchConcurrency = 2
	defaultBatchPause       = time.Second
)

// Config tunes the batch behavior of the Enricher.
type Config struct {
	// BatchConcurrency is the number of games fetched concurrently per
	// batch.
	BatchConcurrency int
	// BatchPause is the minimum pause between batches; the actual pause
	// adds up to 50% random jitter on top.
	BatchPause time.Duration
	// Budget caps the wall-clock time of one EnrichMany call. Zero
	// means no cap. Once exceeded, no new batch starts; resolved games
	// are still returned.
	Budget time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = defaultBatchConcurrency
	}
	if c.BatchPause <= 0 {
		c.BatchPause = defaultBatchPause
	}
	return c
}

// Enricher derives price summaries for canonical games. One Enricher is
// shared process-wide; all of its collaborators are safe for concurrent
// use.
type Enricher struct {
	provider providers.DealProvider
	stores   *pricecache.StoreDirectory
	cache    *pricecache.Cache
	limiter  *providers.Limiter
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *metrics.Recorder
	cfg      Config

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs an Enricher. The limiter is optional; when present, a
// rate-limit failure during a batch opens its circuit breaker so every
// other caller backs off too.
func New(provider providers.DealProvider, stores *pricecache.StoreDirectory, cache *pricecache.Cache, limiter *providers.Limiter, clock clockwork.Clock, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Enricher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Enricher{
		provider: provider,
		stores:   stores,
		cache:    cache,
		limiter:  limiter,
		clock:    clock,
		logger:   logger,
		metrics:  recorder,
		cfg:      cfg.withDefaults(),
		rng:      rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// EnrichOne resolves the price summary for a single game. A nil PriceInfo
// with a nil error means the game has no comparable listing; that outcome
// is cached like any other. Exhausted rate limiting degrades to the same
// cached "no price" answer, while an open breaker yields a prompt nil
// without touching the cache so the title is retried once the block clears.
// Transport and server errors are not cached.
func (e *Enricher) EnrichOne(ctx context.Context, game games.Game, strategy matching.Strategy) (*deals.PriceInfo, error) {
	key := matching.Normalize(game.Title)

	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	start := e.clock.Now()
	rows, err := e.provider.SearchDeals(ctx, game.Title)
	if err != nil {
		if bErr, ok := providers.AsBlockedError(err); ok {
			logging.Warn(e.logger, "provider blocked, skipping price lookup",
				logging.FieldTitle, game.Title, "until", bErr.Until.Format(time.RFC3339))
			return nil, nil
		}
		if _, ok := providers.AsRateLimitError(err); ok {
			// Retries are already spent by the provider stack. Remember
			// the miss so the title is not re-queried the moment the
			// block clears.
			e.tripBreaker()
			e.cache.Put(key, nil)
			e.metrics.RecordEnrichment(string(strategy), metrics.OutcomeFailed, e.clock.Now().Sub(start))
			logging.Warn(e.logger, "rate limited, caching missing price",
				logging.FieldTitle, game.Title)
			return nil, nil
		}
		return nil, err
	}

	query := matching.MatchQuery{
		Title:              game.Title,
		ReleaseDate:        game.ReleaseDate,
		HasDesktopPlatform: game.HasDesktopPlatform(),
	}
	result := matching.SelectBestMatch(query, deals.Candidates(rows), strategy)
	if !result.Matched {
		e.cache.Put(key, nil)
		e.metrics.RecordEnrichment(string(strategy), metrics.OutcomeUnmatched, e.clock.Now().Sub(start))
		logging.Info(e.logger, "no comparable listing",
			logging.FieldTitle, game.Title, "reason", result.Reason, "top_score", result.Score)
		return nil, nil
	}

	offers := e.buildOffers(ctx, rows, result.ExternalGameID)
	if len(offers) == 0 {
		// Matched but every offer had a non-positive price; nothing to
		// show.
		e.cache.Put(key, nil)
		e.metrics.RecordEnrichment(string(strategy), metrics.OutcomeUnmatched, e.clock.Now().Sub(start))
		return nil, nil
	}

	headline := offers[0]
	info := &deals.PriceInfo{
		BestPrice:       &headline.Price,
		OriginalPrice:   headline.OriginalPrice,
		DiscountPercent: headline.DiscountPercent,
		MatchScore:      result.Score,
		MatchStrategy:   string(strategy),
		StoreName:       headline.StoreName,
		Offers:          offers,
	}
	e.cache.Put(key, info)
	e.metrics.RecordEnrichment(string(strategy), metrics.OutcomePriced, e.clock.Now().Sub(start))
	return info, nil
}

// EnrichMany resolves prices for a set of games with bounded concurrency.
// Games without a price (no match, individual failure, skipped behind an
// open breaker) are absent from the result map. A rate limit during a
// batch opens the shared breaker, so the remaining batches are abandoned
// and the partial results returned.
func (e *Enricher) EnrichMany(ctx context.Context, list []games.Game, strategy matching.Strategy) map[string]*deals.PriceInfo {
	results := make(map[string]*deals.PriceInfo)

	// Serve everything the cache already answers, so the fetch batches
	// only carry genuinely unknown titles.
	var pending []games.Game
	cachedHits := 0
	for _, g := range list {
		if cached, ok := e.cache.Get(matching.Normalize(g.Title)); ok {
			cachedHits++
			if cached != nil {
				results[g.ID] = cached
			}
			continue
		}
		pending = append(pending, g)
	}

	var deadline time.Time
	if e.cfg.Budget > 0 {
		deadline = e.clock.Now().Add(e.cfg.Budget)
	}

	var mu sync.Mutex
	fetched := 0

	for start := 0; start < len(pending); start += e.cfg.BatchConcurrency {
		if ctx.Err() != nil {
			break
		}
		if !deadline.IsZero() && !e.clock.Now().Before(deadline) {
			logging.Warn(e.logger, "enrichment budget exhausted, returning partial results",
				"resolved", len(results), "remaining", len(pending)-start)
			break
		}
		if blocked, until := e.breakerOpen(); blocked {
			logging.Warn(e.logger, "provider blocked, abandoning enrichment batches",
				"until", until.Format(time.RFC3339), "remaining", len(pending)-start)
			break
		}

		end := start + e.cfg.BatchConcurrency
		if end > len(pending) {
			end = len(pending)
		}

		g, batchCtx := errgroup.WithContext(ctx)
		for _, game := range pending[start:end] {
			game := game
			g.Go(func() error {
				info, err := e.EnrichOne(batchCtx, game, strategy)
				if err != nil {
					e.metrics.RecordEnrichment(string(strategy), metrics.OutcomeFailed, 0)
					logging.Error(e.logger, "enrichment failed for game", err,
						logging.FieldTitle, game.Title)
					return nil
				}
				mu.Lock()
				fetched++
				if info != nil {
					results[game.ID] = info
				}
				mu.Unlock()
				return nil
			})
		}
		// Rate limiting never escapes EnrichOne; it trips the shared
		// breaker instead, which the next loop iteration observes.
		_ = g.Wait()

		if end < len(pending) {
			if err := e.pause(ctx); err != nil {
				break
			}
		}
	}

	logging.Info(e.logger, "enrichment pass complete",
		"requested", len(list), "cached", cachedHits, "fetched", fetched, "priced", len(results))
	return results
}

// buildOffers turns the raw deal rows of one external game into store
// offers: positive prices only, ascending, with resolved store names.
func (e *Enricher) buildOffers(ctx context.Context, rows []deals.Deal, externalGameID string) []deals.StoreOffer {
	storeNames := e.storeNames(ctx)

	var offers []deals.StoreOffer
	for _, row := range rows {
		if row.ExternalGameID != externalGameID || row.SalePrice <= 0 {
			continue
		}
		offer := deals.StoreOffer{
			StoreID:     row.StoreID,
			StoreName:   storeNames[row.StoreID],
			Price:       row.SalePrice,
			DealID:      row.DealID,
			RedirectURL: row.RedirectURL,
		}
		if row.NormalPrice > row.SalePrice {
			original := row.NormalPrice
			offer.OriginalPrice = &original
			offer.DiscountPercent = int(math.Round((original - row.SalePrice) / original * 100))
		}
		offers = append(offers, offer)
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
	return offers
}

func (e *Enricher) storeNames(ctx context.Context) map[string]string {
	if e.stores == nil {
		return nil
	}
	names, err := e.stores.Stores(ctx)
	if err != nil {
		// Offers render without store names rather than failing the
		// whole enrichment.
		logging.Warn(e.logger, "store directory unavailable", "error", err)
		return nil
	}
	return names
}

func (e *Enricher) pause(ctx context.Context) error {
	d := e.cfg.BatchPause + e.jitter(e.cfg.BatchPause/2)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(d):
		return nil
	}
}

func (e *Enricher) jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return time.Duration(e.rng.Int63n(int64(max)))
}

func (e *Enricher) breakerOpen() (bool, time.Time) {
	if e.limiter == nil {
		return false, time.Time{}
	}
	return e.limiter.Blocked()
}

func (e *Enricher) tripBreaker() {
	if e.limiter != nil {
		e.limiter.Block(providers.DefaultBlockDuration)
	}
}
