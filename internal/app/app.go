// Package app wires the enrichment stack from configuration: provider
// selection, rate-limit and retry decorators, caches and the orchestrator.
// The HTTP glue that exposes it lives outside this module.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"

	"game-deals-service/internal/config"
	"game-deals-service/internal/enrich"
	"game-deals-service/internal/evaldata"
	"game-deals-service/internal/logging"
	"game-deals-service/internal/metrics"
	"game-deals-service/internal/pricecache"
	"game-deals-service/internal/providers"
	"game-deals-service/internal/providers/cheapshark"
	"game-deals-service/internal/providers/fixture"
)

// App holds the assembled enrichment stack.
type App struct {
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Limiter  *providers.Limiter
	Provider providers.DealsProvider
	Cache    *pricecache.Cache
	Stores   *pricecache.StoreDirectory
	Enricher *enrich.Enricher
	Runner   *evaldata.Runner

	// MetricsHandler serves Prometheus scrapes when telemetry is
	// enabled, nil otherwise.
	MetricsHandler http.Handler

	metricsServer *http.Server
	shutdown      func(context.Context) error
}

// New assembles the stack. The returned App must be closed with Shutdown.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	recorder, handler, shutdown, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	limiter := providers.NewLimiter(cfg.RateLimit.MaxPerMinute, cfg.RateLimit.MinSpacing, clock)

	name := providerName(cfg.Provider)
	provider := buildProvider(cfg, limiter, clock, logger, recorder, name)

	cache := pricecache.NewCache(cfg.Enrichment.PriceCacheTTL, clock, recorder)
	stores := pricecache.NewStoreDirectory(provider, cfg.Enrichment.StoreCacheTTL, clock)

	enricher := enrich.New(provider, stores, cache, limiter, clock, logger, recorder, enrich.Config{
		BatchConcurrency: cfg.Enrichment.BatchConcurrency,
		BatchPause:       cfg.Enrichment.BatchPause,
		Budget:           cfg.Enrichment.Budget,
	})

	a := &App{
		Logger:         logger,
		Metrics:        recorder,
		Limiter:        limiter,
		Provider:       provider,
		Cache:          cache,
		Stores:         stores,
		Enricher:       enricher,
		Runner:         evaldata.NewRunner(provider, logger),
		MetricsHandler: handler,
		shutdown:       shutdown,
	}
	if handler != nil {
		a.metricsServer = &http.Server{
			Addr:    ":" + cfg.Metrics.Port,
			Handler: handler,
		}
	}
	return a, nil
}

// ServeMetrics starts the Prometheus scrape listener on the configured
// metrics port and returns the bound address. It returns "" when telemetry
// is disabled. The listener is closed by Shutdown.
func (a *App) ServeMetrics() (string, error) {
	if a == nil || a.metricsServer == nil {
		return "", nil
	}
	ln, err := net.Listen("tcp", a.metricsServer.Addr)
	if err != nil {
		return "", err
	}
	go func() {
		if err := a.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(a.Logger, "metrics server stopped", err)
		}
	}()
	return ln.Addr().String(), nil
}

// Shutdown stops the metrics listener and flushes telemetry exporters.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.metricsServer != nil {
		_ = a.metricsServer.Shutdown(ctx)
	}
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}

// buildProvider selects the base provider and stacks the shared decorators:
// the limiter gates every outbound call, and the retry layer re-enters the
// limiter on each attempt.
func buildProvider(cfg config.Config, limiter *providers.Limiter, clock clockwork.Clock, logger *slog.Logger, recorder *metrics.Recorder, name string) providers.DealsProvider {
	base := selectProvider(cfg, logger)

	limited := providers.NewRateLimitedProvider(base, limiter, logger, name)
	return providers.NewRetryingProvider(limited, limiter, providers.RetryPolicy{
		MaxRetries:    cfg.RateLimit.MaxRetries,
		BlockDuration: cfg.RateLimit.BlockDuration,
	}, clock, logger, recorder, name)
}

func selectProvider(cfg config.Config, logger *slog.Logger) providers.DealsProvider {
	switch strings.ToLower(cfg.Provider) {
	case fixture.ProviderName:
		return fixture.New()
	case cheapshark.ProviderName, "":
		return cheapshark.NewClient(cheapshark.Config{
			BaseURL:  cfg.CheapShark.BaseURL,
			PageSize: cfg.CheapShark.PageSize,
		})
	default:
		if logger != nil {
			logger.Warn("unknown provider, falling back to fixture", slog.String("provider", cfg.Provider))
		}
		return fixture.New()
	}
}

func providerName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return cheapshark.ProviderName
	}
	return name
}
