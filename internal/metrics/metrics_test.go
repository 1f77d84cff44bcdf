package metrics

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecorderProviderAttempts(t *testing.T) {
	r := NewRecorder()

	r.RecordProviderAttempt("cheapshark", 10*time.Millisecond, nil)
	r.RecordProviderAttempt("cheapshark", 20*time.Millisecond, errors.New("boom"))

	if got := r.ProviderCalls("cheapshark"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := r.ProviderErrors("cheapshark"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := r.Snapshot("cheapshark").LastCallLatency; got != 20*time.Millisecond {
		t.Fatalf("expected last latency 20ms, got %s", got)
	}
}

func TestRecorderRateLimits(t *testing.T) {
	r := NewRecorder()

	r.RecordRateLimit("cheapshark", 0)
	r.RecordRateLimit("cheapshark", 9*time.Second)

	if got := r.RateLimitHits("cheapshark"); got != 2 {
		t.Fatalf("expected 2 hits, got %d", got)
	}
	if got := r.LastRetryAfter("cheapshark"); got != 9*time.Second {
		t.Fatalf("expected retry-after 9s, got %s", got)
	}
}

func TestRecorderCacheHitRate(t *testing.T) {
	r := NewRecorder()

	if got := r.CacheHitRate("price"); got != 0 {
		t.Fatalf("expected 0 hit rate with no lookups, got %v", got)
	}

	r.RecordCacheLookup("price", true)
	r.RecordCacheLookup("price", true)
	r.RecordCacheLookup("price", false)
	r.RecordCacheLookup("stores", false)

	if got := r.CacheHitRate("price"); got < 0.66 || got > 0.67 {
		t.Fatalf("expected ~2/3 hit rate, got %v", got)
	}
	if got := r.CacheHitRate("stores"); got != 0 {
		t.Fatalf("expected 0 hit rate for stores, got %v", got)
	}
}

func TestRecorderEnrichmentCounts(t *testing.T) {
	r := NewRecorder()

	r.RecordEnrichment("hybrid", OutcomePriced, time.Millisecond)
	r.RecordEnrichment("hybrid", OutcomeUnmatched, time.Millisecond)
	r.RecordEnrichment("fuzzy", OutcomeFailed, time.Millisecond)

	priced, unmatched, failed := r.EnrichmentCounts()
	if priced != 1 || unmatched != 1 || failed != 1 {
		t.Fatalf("unexpected counts: %d/%d/%d", priced, unmatched, failed)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.RecordProviderAttempt("cheapshark", time.Millisecond, nil)
	r.RecordRateLimit("cheapshark", time.Second)
	r.RecordCacheLookup("price", true)
	r.RecordEnrichment("hybrid", OutcomePriced, time.Millisecond)
	if got := r.ProviderCalls("cheapshark"); got != 0 {
		t.Fatalf("expected zero calls on nil recorder, got %d", got)
	}
}

func TestSetupDisabledReturnsRecorder(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec == nil {
		t.Fatalf("expected recorder")
	}
	if handler != nil {
		t.Fatalf("expected nil handler when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
