package config

import "time"

// RateLimitConfig controls the shared outbound throttle and circuit
// breaker.
type RateLimitConfig struct {
	MaxPerMinute  int
	MinSpacing    time.Duration
	MaxRetries    int
	BlockDuration time.Duration
}

func loadRateLimit() RateLimitConfig {
	return RateLimitConfig{
		MaxPerMinute:  intEnvOrDefault(envRateMaxPerMinute, defaultRateMaxPerMinute),
		MinSpacing:    durationEnvOrDefault(envRateMinSpacing, defaultRateMinSpacing),
		MaxRetries:    intEnvOrDefault(envRateMaxRetries, defaultRateMaxRetries),
		BlockDuration: durationEnvOrDefault(envRateBlock, defaultRateBlock),
	}
}

// EnrichmentConfig controls matching strategy, batch behavior and cache
// TTLs.
type EnrichmentConfig struct {
	Strategy         string
	BatchConcurrency int
	BatchPause       time.Duration
	Budget           time.Duration
	PriceCacheTTL    time.Duration
	StoreCacheTTL    time.Duration
}

func loadEnrichment() EnrichmentConfig {
	return EnrichmentConfig{
		Strategy:         envOrDefault(envMatchStrategy, defaultMatchStrategy),
		BatchConcurrency: intEnvOrDefault(envEnrichBatchSize, defaultEnrichBatchSize),
		BatchPause:       durationEnvOrDefault(envEnrichBatchPause, defaultEnrichBatchPause),
		Budget:           durationEnvOrDefault(envEnrichBudget, 0),
		PriceCacheTTL:    durationEnvOrDefault(envPriceCacheTTL, defaultPriceCacheTTL),
		StoreCacheTTL:    durationEnvOrDefault(envStoreCacheTTL, defaultStoreCacheTTL),
	}
}
