package providers

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultMaxPerMinute = 10
	defaultMinSpacing   = 6 * time.Second

	windowDuration = time.Minute
	// Extra wait after the oldest window entry expires, so a clock skew
	// on either side never produces a request at exactly the limit.
	windowMargin = time.Second

	// DefaultBlockDuration is how long the circuit breaker stays open
	// after persistent rate limiting.
	DefaultBlockDuration = time.Hour
)

// Limiter enforces the outbound request policy for the deals catalog: a
// sliding one-minute window with a fixed request budget, a minimum spacing
// between consecutive requests, and a circuit breaker opened after
// persistent upstream rate limiting. One Limiter is shared by every caller
// that talks to the same upstream.
type Limiter struct {
	clock        clockwork.Clock
	maxPerMinute int
	minSpacing   time.Duration

	mu           sync.Mutex
	window       []time.Time
	blockedUntil time.Time
}

// NewLimiter constructs a Limiter. Non-positive arguments fall back to the
// defaults (10 requests/minute, 6s spacing).
func NewLimiter(maxPerMinute int, minSpacing time.Duration, clock clockwork.Clock) *Limiter {
	if maxPerMinute <= 0 {
		maxPerMinute = defaultMaxPerMinute
	}
	if minSpacing <= 0 {
		minSpacing = defaultMinSpacing
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		clock:        clock,
		maxPerMinute: maxPerMinute,
		minSpacing:   minSpacing,
	}
}

// Wait blocks until a request may be issued, then records it. Window drain
// and spacing are bounded, computed delays. While the circuit breaker is
// open, Wait does not sleep it out: it fails fast with a *BlockedError so
// callers can degrade immediately instead of stalling for up to an hour.
// The request timestamp is recorded only once all waits have cleared.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait, err := l.reserve()
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(wait):
		}
	}
}

// reserve records the request and returns a zero wait, returns the delay
// still required by the window or spacing, or refuses with a *BlockedError
// while the breaker is open.
func (l *Limiter) reserve() (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	if now.Before(l.blockedUntil) {
		return 0, &BlockedError{Until: l.blockedUntil}
	}

	l.prune(now)

	if len(l.window) >= l.maxPerMinute {
		oldest := l.window[0]
		return oldest.Add(windowDuration + windowMargin).Sub(now), nil
	}

	if len(l.window) > 0 {
		last := l.window[len(l.window)-1]
		if since := now.Sub(last); since < l.minSpacing {
			return l.minSpacing - since, nil
		}
	}

	l.window = append(l.window, now)
	return 0, nil
}

func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-windowDuration)
	kept := l.window[:0]
	for _, t := range l.window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.window = kept
}

// Block opens the circuit breaker for the given duration. A shorter block
// never shrinks an existing one.
func (l *Limiter) Block(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until := l.clock.Now().Add(d)
	if until.After(l.blockedUntil) {
		l.blockedUntil = until
	}
}

// Blocked reports whether the circuit breaker is currently open, and until
// when.
func (l *Limiter) Blocked() (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Before(l.blockedUntil) {
		return true, l.blockedUntil
	}
	return false, time.Time{}
}

// WindowSize returns the number of requests currently inside the sliding
// window.
func (l *Limiter) WindowSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.clock.Now())
	return len(l.window)
}
