package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/metrics"
)

const (
	defaultMaxRetries     = 2
	defaultBaseDelay      = time.Second
	defaultMaxDelay       = 60 * time.Second
	defaultSaneRetryAfter = 30 * time.Second
)

// RetryPolicy is the single retry/backoff policy shared by every
// upstream-calling collaborator. Only rate-limit responses are retried;
// transport and server errors propagate immediately.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first
	// one.
	MaxRetries int
	// BaseDelay seeds the exponential backoff used when the upstream
	// does not advertise a Retry-After.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// SaneRetryAfter is the largest server-advertised Retry-After worth
	// waiting for; anything above it opens the circuit breaker instead.
	SaneRetryAfter time.Duration
	// BlockDuration is how long the breaker stays open once retries are
	// exhausted or the upstream signals a serious block.
	BlockDuration time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	if p.SaneRetryAfter <= 0 {
		p.SaneRetryAfter = defaultSaneRetryAfter
	}
	if p.BlockDuration <= 0 {
		p.BlockDuration = DefaultBlockDuration
	}
	return p
}

// newBackoff builds the deterministic 1s/2s/4s... schedule for one request.
func (p RetryPolicy) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// retryingProvider wraps a DealsProvider with the 429 retry/backoff policy
// and opens the shared circuit breaker when rate limiting persists.
type retryingProvider struct {
	inner   DealsProvider
	limiter *Limiter
	policy  RetryPolicy
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *metrics.Recorder
	name    string
}

// NewRetryingProvider wraps the given provider with the retry policy. The
// limiter is shared with the rate-limited decorator so a breaker opened here
// stalls every other caller too.
func NewRetryingProvider(inner DealsProvider, limiter *Limiter, policy RetryPolicy, clock clockwork.Clock, logger *slog.Logger, recorder *metrics.Recorder, name string) DealsProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &retryingProvider{
		inner:   inner,
		limiter: limiter,
		policy:  policy.withDefaults(),
		clock:   clock,
		logger:  logger,
		metrics: recorder,
		name:    name,
	}
}

func (r *retryingProvider) SearchDeals(ctx context.Context, title string) ([]deals.Deal, error) {
	var result []deals.Deal
	err := r.retry(ctx, "search_deals", func() error {
		var innerErr error
		result, innerErr = r.inner.SearchDeals(ctx, title)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *retryingProvider) FetchStores(ctx context.Context) (map[string]string, error) {
	var result map[string]string
	err := r.retry(ctx, "fetch_stores", func() error {
		var innerErr error
		result, innerErr = r.inner.FetchStores(ctx)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *retryingProvider) retry(ctx context.Context, op string, call func() error) error {
	if r.inner == nil {
		return ErrProviderUnavailable
	}

	expo := r.policy.newBackoff()

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}

		rlErr, ok := AsRateLimitError(lastErr)
		if !ok {
			// Transport and server errors are the caller's problem.
			return lastErr
		}

		r.metrics.RecordRateLimit(r.name, rlErr.RetryAfter)

		if rlErr.RetryAfter > r.policy.SaneRetryAfter {
			logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "upstream advertised long retry-after, opening breaker",
				"op", op, "retry_after", rlErr.RetryAfter.String(), "block", r.policy.BlockDuration.String())
			r.block()
			return lastErr
		}

		if attempt >= r.policy.MaxRetries {
			logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "rate limit retries exhausted, opening breaker",
				"op", op, "attempts", attempt+1, "block", r.policy.BlockDuration.String())
			r.block()
			return lastErr
		}

		delay := rlErr.RetryAfter
		if delay <= 0 {
			delay = expo.NextBackOff()
		}

		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "rate limited, retrying",
			"op", op, "attempt", attempt+1, "delay", delay.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(delay):
		}
	}
}

func (r *retryingProvider) block() {
	if r.limiter != nil {
		r.limiter.Block(r.policy.BlockDuration)
	}
}
