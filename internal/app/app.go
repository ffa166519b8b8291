// Package app wires the aggregation pipeline together. App is an explicit
// service context: cache, logger, metrics and router are constructed once
// and injected everywhere, so tests can substitute isolated instances.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"trendscope/internal/cache"
	"trendscope/internal/collect"
	"trendscope/internal/config"
	"trendscope/internal/dedup"
	"trendscope/internal/metrics"
	"trendscope/internal/news"
	"trendscope/internal/retry"
	"trendscope/internal/route"
	"trendscope/internal/source"
)

type App struct {
	Cfg     *config.Config
	Log     *slog.Logger
	Cache   *cache.Cache
	Metrics *metrics.Metrics

	env       *source.Env
	router    *route.Router
	collector *collect.Collector
	dedup     *dedup.Deduplicator
}

// New loads the source descriptors and assembles the pipeline.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	routes, err := route.LoadRoutes(cfg.SourcesConfigPath)
	if err != nil {
		return nil, err
	}
	return NewWithRoutes(cfg, log, routes), nil
}

// NewWithRoutes assembles the pipeline around already-parsed descriptors.
// Tests use it to point sources at local fixtures.
func NewWithRoutes(cfg *config.Config, log *slog.Logger, routes *route.Routes) *App {
	m := metrics.New()
	env := &source.Env{
		Client:   &http.Client{Timeout: cfg.SourceTimeout},
		Log:      log,
		Metrics:  m,
		Retry:    retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true},
		MaxItems: cfg.MaxPerSource,
	}

	return &App{
		Cfg:       cfg,
		Log:       log,
		Cache:     cache.New(),
		Metrics:   m,
		env:       env,
		router:    route.NewRouter(routes, cfg, env),
		collector: collect.New(log),
		dedup:     dedup.New(cfg.DedupThreshold, cfg.MinTitleLength),
	}
}

// ValidateCategory rejects unknown identifiers before the pipeline starts.
func (a *App) ValidateCategory(category string) error {
	return a.router.Validate(category)
}

// Aggregate assembles (or serves from cache) the cross-category response.
func (a *App) Aggregate(ctx context.Context) *news.AggregatedResponse {
	if resp, ok := a.Cache.Get(cache.AllKey); ok {
		a.Metrics.IncrementCacheHits()
		return resp
	}
	a.Metrics.IncrementCacheMisses()

	start := time.Now()
	resp := &news.AggregatedResponse{
		Success:    true,
		Timestamp:  time.Now().UTC(),
		Categories: make(map[news.Category][]news.Article),
	}
	for _, cat := range news.Categories() {
		resp.Categories[cat] = a.assemble(ctx, cat)
	}
	a.Metrics.RecordAssembleTime(time.Since(start))

	a.Cache.Set(cache.AllKey, resp, a.Cfg.CacheTTL)
	return resp
}

// Category assembles (or serves from cache) a single category response.
func (a *App) Category(ctx context.Context, cat news.Category) *news.AggregatedResponse {
	key := string(cat)
	if resp, ok := a.Cache.Get(key); ok {
		a.Metrics.IncrementCacheHits()
		return resp
	}
	a.Metrics.IncrementCacheMisses()

	start := time.Now()
	resp := &news.AggregatedResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Categories: map[news.Category][]news.Article{
			cat: a.assemble(ctx, cat),
		},
	}
	a.Metrics.RecordAssembleTime(time.Since(start))

	a.Cache.Set(key, resp, a.Cfg.CacheTTL)
	return resp
}

// CachedAggregate returns the last assembled cross-category response, if
// any. The CSV export reads from here and never triggers a fetch.
func (a *App) CachedAggregate() (*news.AggregatedResponse, bool) {
	return a.Cache.Get(cache.AllKey)
}

// TrendsByRegion serves the Google Trends daily feed for a region code,
// cached separately per region.
func (a *App) TrendsByRegion(ctx context.Context, region string) *news.AggregatedResponse {
	key := "trends:" + region
	if resp, ok := a.Cache.Get(key); ok {
		a.Metrics.IncrementCacheHits()
		return resp
	}
	a.Metrics.IncrementCacheMisses()

	adapter := source.NewFeed(a.env, "google-trends-"+region, source.TrendsFeedURL(region), news.CategoryGeneral, region)
	merged := a.collector.FanOut(ctx, []source.Adapter{adapter})
	a.Metrics.AddArticlesFetched(len(merged))
	deduped := a.dedup.Deduplicate(merged)
	a.Metrics.AddDuplicatesFiltered(len(merged) - len(deduped))

	resp := &news.AggregatedResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Categories: map[news.Category][]news.Article{
			news.CategoryGeneral: news.Cap(deduped, a.Cfg.MaxPerCategory),
		},
	}
	a.Cache.Set(key, resp, a.Cfg.CacheTTL)
	return resp
}

// SourceSummary lists configured source names per category for the health
// endpoint.
func (a *App) SourceSummary() map[string][]string {
	return a.router.Summary()
}

// assemble runs the pipeline for one category: fan-out, merge, dedup,
// category policy filter.
func (a *App) assemble(ctx context.Context, cat news.Category) []news.Article {
	adapters := a.router.Adapters(cat)
	if len(adapters) == 0 {
		return []news.Article{}
	}

	merged := a.collector.FanOut(ctx, adapters)
	a.Metrics.AddArticlesFetched(len(merged))

	deduped := a.dedup.Deduplicate(merged)
	a.Metrics.AddDuplicatesFiltered(len(merged) - len(deduped))

	return a.router.Filter(cat, deduped)
}
