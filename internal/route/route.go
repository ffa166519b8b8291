// Package route maps requested categories to the source adapters that back
// them and post-processes merged results per category policy.
package route

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trendscope/internal/config"
	"trendscope/internal/news"
	"trendscope/internal/source"
)

// Kind tags a source descriptor. Each kind carries only the fields it
// needs; Build dispatches exhaustively and rejects unknown kinds at load
// time rather than at request time.
type Kind string

const (
	KindSearchAPI    Kind = "search_api"
	KindTopHeadlines Kind = "top_headlines"
	KindRSSFeed      Kind = "rss"
	KindHTMLScrape   Kind = "html"
	KindTrends       Kind = "trends"
	KindFallback     Kind = "fallback"
)

// SourceConfig describes one source binding inside configs/sources.yaml.
type SourceConfig struct {
	Kind      Kind     `yaml:"kind"`
	Name      string   `yaml:"name"`
	Query     string   `yaml:"query,omitempty"`     // search_api
	Country   string   `yaml:"country,omitempty"`   // search_api, top_headlines
	URL       string   `yaml:"url,omitempty"`       // rss, html
	Selectors []string `yaml:"selectors,omitempty"` // html
	Region    string   `yaml:"region,omitempty"`

	// Ordered fallback chain members, highest priority first.
	Sources []SourceConfig `yaml:"sources,omitempty"`
}

// Routes is the parsed sources file: category name to its descriptors.
type Routes struct {
	Categories map[string][]SourceConfig `yaml:"categories"`
}

// LoadRoutes reads the source descriptors from a YAML file.
func LoadRoutes(path string) (*Routes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sources config: %w", err)
	}
	defer f.Close()

	var routes Routes
	if err := yaml.NewDecoder(f).Decode(&routes); err != nil {
		return nil, fmt.Errorf("parsing sources config: %w", err)
	}

	for name, descs := range routes.Categories {
		if !news.ValidCategory(name) {
			return nil, fmt.Errorf("unknown category %q in sources config", name)
		}
		for _, sc := range descs {
			if err := validateDescriptor(sc); err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
		}
	}
	return &routes, nil
}

func validateDescriptor(sc SourceConfig) error {
	switch sc.Kind {
	case KindSearchAPI:
		if sc.Query == "" {
			return fmt.Errorf("source %q: search_api requires a query", sc.Name)
		}
	case KindTopHeadlines:
		if sc.Country == "" {
			return fmt.Errorf("source %q: top_headlines requires a country", sc.Name)
		}
	case KindRSSFeed, KindHTMLScrape:
		if sc.URL == "" {
			return fmt.Errorf("source %q: %s requires a url", sc.Name, sc.Kind)
		}
	case KindTrends:
		// region defaults at build time
	case KindFallback:
		if len(sc.Sources) == 0 {
			return fmt.Errorf("source %q: fallback requires nested sources", sc.Name)
		}
		for _, nested := range sc.Sources {
			if nested.Kind == KindFallback {
				return fmt.Errorf("source %q: fallback chains do not nest", sc.Name)
			}
			if err := validateDescriptor(nested); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("source %q: unknown kind %q", sc.Name, sc.Kind)
	}
	return nil
}

// Router resolves categories to adapter sets.
type Router struct {
	routes *Routes
	cfg    *config.Config
	env    *source.Env
}

func NewRouter(routes *Routes, cfg *config.Config, env *source.Env) *Router {
	return &Router{routes: routes, cfg: cfg, env: env}
}

// Validate rejects unknown category identifiers before any adapter runs.
func (r *Router) Validate(category string) error {
	if !news.ValidCategory(category) {
		return fmt.Errorf("unknown category %q, valid categories: %v", category, news.CategoryNames())
	}
	return nil
}

// Adapters builds the adapter invocations for a category in descriptor
// order. Descriptors whose API key is not configured are skipped with a
// warning; a half-configured deployment still serves its other sources.
func (r *Router) Adapters(category news.Category) []source.Adapter {
	descs := r.routes.Categories[string(category)]
	adapters := make([]source.Adapter, 0, len(descs))
	for _, sc := range descs {
		a := r.build(sc, category)
		if a == nil {
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters
}

func (r *Router) build(sc SourceConfig, category news.Category) source.Adapter {
	switch sc.Kind {
	case KindSearchAPI:
		if r.cfg.GNewsAPIKey == "" {
			r.env.Log.Warn("skipping source, GNEWS_API_KEY not set", "source", sc.Name)
			return nil
		}
		return source.NewSearch(r.env, r.cfg.GNewsAPIKey, sc.Query, sc.Country, category, sc.Region)
	case KindTopHeadlines:
		if r.cfg.NewsAPIKey == "" {
			r.env.Log.Warn("skipping source, NEWSAPI_KEY not set", "source", sc.Name)
			return nil
		}
		return source.NewTopHeadlines(r.env, r.cfg.NewsAPIKey, sc.Country, category, sc.Region)
	case KindRSSFeed:
		return source.NewFeed(r.env, sc.Name, sc.URL, category, sc.Region)
	case KindHTMLScrape:
		return source.NewScrape(r.env, sc.Name, sc.URL, sc.Selectors, category, sc.Region)
	case KindTrends:
		region := sc.Region
		if region == "" {
			region = r.cfg.DefaultRegion
		}
		return source.NewFeed(r.env, sc.Name, source.TrendsFeedURL(region), category, region)
	case KindFallback:
		members := make([]source.Adapter, 0, len(sc.Sources))
		for _, nested := range sc.Sources {
			if a := r.build(nested, category); a != nil {
				members = append(members, a)
			}
		}
		if len(members) == 0 {
			return nil
		}
		return source.NewFallbackChain(sc.Name, members...)
	}
	// Unknown kinds are rejected at load time.
	return nil
}

// Summary lists descriptor names per category. Health endpoint payload.
func (r *Router) Summary() map[string][]string {
	out := make(map[string][]string, len(r.routes.Categories))
	for name, descs := range r.routes.Categories {
		names := make([]string, 0, len(descs))
		for _, sc := range descs {
			names = append(names, sc.Name)
		}
		out[name] = names
	}
	return out
}

// Queries returns the keyword queries backing a category, used for the
// post-fetch confirmation filter.
func (r *Router) Queries(category news.Category) []string {
	var queries []string
	var walk func(descs []SourceConfig)
	walk = func(descs []SourceConfig) {
		for _, sc := range descs {
			if sc.Kind == KindSearchAPI {
				queries = append(queries, sc.Query)
			}
			if len(sc.Sources) > 0 {
				walk(sc.Sources)
			}
		}
	}
	walk(r.routes.Categories[string(category)])
	return queries
}

// Filter applies per-category policy to the deduplicated merge: category
// confirmation, keyword confirmation for search-backed categories, the
// global region exclusion, recency ordering, and the per-category cap.
func (r *Router) Filter(category news.Category, arts []news.Article) []news.Article {
	kept := make([]news.Article, 0, len(arts))
	queries := r.Queries(category)
	for _, a := range arts {
		if a.Category != category {
			continue
		}
		if len(queries) > 0 && !matchesAnyQuery(a, queries) {
			continue
		}
		kept = append(kept, a)
	}

	if category == news.CategoryGlobal {
		kept = news.FilterGlobal(kept)
	}

	news.SortByRecency(kept)
	return news.Cap(kept, r.cfg.MaxPerCategory)
}

func matchesAnyQuery(a news.Article, queries []string) bool {
	for _, q := range queries {
		if news.MatchesKeywords(a, q) {
			return true
		}
	}
	return false
}
