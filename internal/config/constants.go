package config

import "time"

const (
	envProvider  = "PROVIDER"
	envLogLevel  = "LOG_LEVEL"
	envLogFormat = "LOG_FORMAT"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envRateMaxPerMinute = "RATE_LIMIT_MAX_PER_MINUTE"
	envRateMinSpacing   = "RATE_LIMIT_MIN_SPACING"
	envRateMaxRetries   = "RATE_LIMIT_MAX_RETRIES"
	envRateBlock        = "RATE_LIMIT_BLOCK_DURATION"

	envMatchStrategy    = "MATCH_STRATEGY"
	envEnrichBatchSize  = "ENRICH_CONCURRENCY"
	envEnrichBatchPause = "ENRICH_BATCH_PAUSE"
	envEnrichBudget     = "ENRICH_BUDGET"
	envPriceCacheTTL    = "PRICE_CACHE_TTL"
	envStoreCacheTTL    = "STORE_CACHE_TTL"

	defaultProvider    = "cheapshark"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultMetricsPort = "9090"

	// Conservative defaults to respect the upstream quota (cheapshark
	// tolerates roughly 10 req/min sustained).
	defaultRateMaxPerMinute = 10
	defaultRateMinSpacing   = 6 * Duration(time.Second)
	defaultRateMaxRetries   = 2
	defaultRateBlock        = Duration(time.Hour)

	defaultMatchStrategy    = "hybrid"
	defaultEnrichBatchSize  = 2
	defaultEnrichBatchPause = Duration(time.Second)
	// Deal prices move slowly; a week-long cache keeps repeat page loads
	// off the throttled upstream.
	defaultPriceCacheTTL = 7 * 24 * Duration(time.Hour)
	defaultStoreCacheTTL = Duration(time.Hour)
)
