package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable is returned when a decorator is wired without an
// inner provider.
var ErrProviderUnavailable = errors.New("provider unavailable")

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// BlockedError is returned when the circuit breaker is open and no upstream
// call may be issued before Until.
type BlockedError struct {
	Provider string
	Until    time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("provider blocked until %s", e.Until.Format(time.RFC3339))
}

// AsBlockedError attempts to unwrap an error into a BlockedError.
func AsBlockedError(err error) (*BlockedError, bool) {
	var bErr *BlockedError
	if errors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}
