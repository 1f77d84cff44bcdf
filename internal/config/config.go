package config

// Config holds runtime configuration for the enrichment service.
type Config struct {
	Provider   string
	LogLevel   string
	LogFormat  string
	CheapShark CheapSharkConfig
	RateLimit  RateLimitConfig
	Enrichment EnrichmentConfig
	Metrics    MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Provider:   envOrDefault(envProvider, defaultProvider),
		LogLevel:   envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:  envOrDefault(envLogFormat, defaultLogFormat),
		CheapShark: loadCheapShark(),
		RateLimit:  loadRateLimit(),
		Enrichment: loadEnrichment(),
		Metrics:    loadMetrics(),
	}
}
