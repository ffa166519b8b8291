package source

import (
	"context"
	"fmt"
	"time"

	"trendscope/internal/news"
	"trendscope/internal/scraper"
)

// Scrape extracts headlines from an HTML listing page. Sites carry no
// machine-readable timestamps on listing pages, so articles get the fetch
// time.
type Scrape struct {
	env       *Env
	name      string
	pageURL   string
	selectors []string
	category  news.Category
	region    string
}

func NewScrape(env *Env, name, pageURL string, selectors []string, category news.Category, region string) *Scrape {
	return &Scrape{
		env:       env,
		name:      name,
		pageURL:   pageURL,
		selectors: selectors,
		category:  category,
		region:    region,
	}
}

func (s *Scrape) Name() string {
	return fmt.Sprintf("scrape:%s", s.name)
}

func (s *Scrape) Fetch(ctx context.Context) []news.Article {
	return s.env.run(ctx, s.Name(), s.fetch)
}

func (s *Scrape) fetch(ctx context.Context) ([]news.Article, error) {
	headlines, err := scraper.FetchHeadlines(ctx, s.env.Client, s.pageURL, s.selectors, s.env.MaxItems)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	arts := make([]news.Article, 0, len(headlines))
	for _, h := range headlines {
		arts = append(arts, news.Article{
			Title:       h.Title,
			Link:        h.Link,
			PublishedAt: now,
			Source:      s.name,
			Category:    s.category,
			Image:       h.Image,
			Region:      s.region,
		})
	}
	return s.env.admit(arts), nil
}
