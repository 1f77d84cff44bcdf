package providers

import (
	"context"
	"log/slog"

	"game-deals-service/internal/domain/deals"
)

// rateLimitedProvider wraps a DealsProvider and funnels every upstream call
// through a shared Limiter.
type rateLimitedProvider struct {
	next    DealsProvider
	limiter *Limiter
	logger  *slog.Logger
	name    string
}

// NewRateLimitedProvider returns a DealsProvider whose calls block until the
// shared limiter grants a slot. Calls never skip ahead of the limiter to
// avoid exceeding upstream quotas. While the limiter's breaker is open,
// calls are rejected immediately with a *BlockedError.
func NewRateLimitedProvider(next DealsProvider, limiter *Limiter, logger *slog.Logger, name string) DealsProvider {
	if limiter == nil {
		limiter = NewLimiter(0, 0, nil)
	}
	return &rateLimitedProvider{
		next:    next,
		limiter: limiter,
		logger:  logger,
		name:    name,
	}
}

func (p *rateLimitedProvider) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	if p == nil || p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "provider unavailable")
		return nil, ErrProviderUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "rate-limited search refused", "error", err)
		return nil, p.tagBlocked(err)
	}
	return p.next.SearchDeals(ctx, title)
}

func (p *rateLimitedProvider) FetchStores(ctx context.Context) (map[string]string, error) {
	if p == nil || p.next == nil {
		return nil, ErrProviderUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, p.tagBlocked(err)
	}
	return p.next.FetchStores(ctx)
}

// tagBlocked stamps the provider name onto blocked-breaker rejections;
// other limiter errors (context cancellation) pass through untouched.
func (p *rateLimitedProvider) tagBlocked(err error) error {
	if bErr, ok := AsBlockedError(err); ok {
		return &BlockedError{Provider: p.name, Until: bErr.Until}
	}
	return err
}
