package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/infrastructure"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/normalize"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/services"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
)

// Pipeline holds the constructed data pipeline
type Pipeline struct {
	Location   *time.Location
	Cache      *source.Cache
	Classifier *classifier.Classifier
	Mapper     *normalize.Mapper
	Dashboard  *services.DashboardService
}

// NewPipeline builds the fetcher selected by cfg.Source.Mode, the cache in
// front of it and the normalization stages.
func NewPipeline(ctx context.Context, cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) (*Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	rules := classifier.DefaultRuleSet()
	aliases := normalize.DefaultAliases()
	if cfg.RulesFile != "" {
		if rules, err = classifier.LoadRuleSet(cfg.RulesFile); err != nil {
			return nil, err
		}
		if aliases, err = normalize.LoadAliases(cfg.RulesFile); err != nil {
			return nil, err
		}
		logger.Info("rules loaded", slog.String("path", cfg.RulesFile))
	}

	fetcher, err := newFetcher(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}

	cache := source.NewCache(fetcher, cfg.Source.CacheTTL,
		source.WithLogger(logger),
		source.WithMetrics(source.NewMetrics(tel.Registry)),
		source.WithTracer(tel.Tracer),
	)

	pipelineMetrics, err := infrastructure.NewPipelineMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	cls := classifier.New(rules)
	mapper := normalize.NewMapper(aliases, cls, loc, logger)
	dashboard := services.NewDashboardService(cache, mapper, cls, loc, logger,
		services.WithTelemetry(tel.Tracer, pipelineMetrics))

	logger.Info("pipeline initialized",
		slog.String("source_mode", cfg.Source.Mode),
		slog.Duration("cache_ttl", cfg.Source.CacheTTL),
		slog.String("timezone", loc.String()))

	return &Pipeline{
		Location:   loc,
		Cache:      cache,
		Classifier: cls,
		Mapper:     mapper,
		Dashboard:  dashboard,
	}, nil
}

// newFetcher selects the dataset fetcher for the configured source mode
func newFetcher(ctx context.Context, cfg config.SourceConfig) (source.Fetcher, error) {
	switch cfg.Mode {
	case config.SourceModeSheets:
		return source.NewSheetsFetcher(ctx, cfg)
	case config.SourceModeWorkbook:
		return source.NewWorkbookFetcher(cfg.WorkbookPath, source.TabsFromConfig(cfg)), nil
	default:
		client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
		return source.NewExportFetcher(cfg, client), nil
	}
}
