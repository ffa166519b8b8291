package source

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"trendscope/internal/news"
)

// Feed pulls one RSS/Atom feed and normalizes its items. Covers both
// publisher feeds and the Google Trends daily feed (see TrendsFeedURL).
type Feed struct {
	env      *Env
	name     string
	url      string
	category news.Category
	region   string
	parser   *gofeed.Parser
}

func NewFeed(env *Env, name, feedURL string, category news.Category, region string) *Feed {
	parser := gofeed.NewParser()
	parser.Client = env.Client
	return &Feed{
		env:      env,
		name:     name,
		url:      feedURL,
		category: category,
		region:   region,
		parser:   parser,
	}
}

func (f *Feed) Name() string {
	return fmt.Sprintf("rss:%s", f.name)
}

func (f *Feed) Fetch(ctx context.Context) []news.Article {
	return f.env.run(ctx, f.Name(), f.fetch)
}

func (f *Feed) fetch(ctx context.Context) ([]news.Article, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	sourceName := f.name
	if sourceName == "" && feed.Title != "" {
		sourceName = feed.Title
	}

	arts := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		image := ""
		if item.Image != nil {
			image = item.Image.URL
		} else if len(item.Enclosures) > 0 {
			image = item.Enclosures[0].URL
		}

		arts = append(arts, news.Article{
			Title:       item.Title,
			Link:        item.Link,
			Content:     item.Description,
			PublishedAt: published,
			Source:      sourceName,
			Category:    f.category,
			Image:       image,
			Region:      f.region,
		})
	}
	return f.env.admit(arts), nil
}

// TrendsFeedURL returns the Google Trends daily searches feed for a region
// code. Unknown codes fall back to Kenya, the service's home region.
func TrendsFeedURL(region string) string {
	geo, ok := trendsGeo[region]
	if !ok {
		geo = "KE"
	}
	return fmt.Sprintf("https://trends.google.com/trends/trendingsearches/daily/rss?geo=%s", geo)
}

var trendsGeo = map[string]string{
	"KE": "KE",
	"US": "US",
	"GB": "GB",
	"UK": "GB",
	"CA": "CA",
	"AU": "AU",
}
