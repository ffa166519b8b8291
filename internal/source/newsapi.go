package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"trendscope/internal/news"
)

const newsAPIBaseURL = "https://newsapi.org/v2/top-headlines"

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// TopHeadlines queries the NewsAPI top-headlines endpoint for one country
// and category pair.
type TopHeadlines struct {
	env      *Env
	apiKey   string
	country  string
	category news.Category
	region   string
	baseURL  string
}

func NewTopHeadlines(env *Env, apiKey, country string, category news.Category, region string) *TopHeadlines {
	return &TopHeadlines{
		env:      env,
		apiKey:   apiKey,
		country:  country,
		category: category,
		region:   region,
		baseURL:  newsAPIBaseURL,
	}
}

func (t *TopHeadlines) Name() string {
	return fmt.Sprintf("newsapi:%s:%s", t.country, t.category)
}

func (t *TopHeadlines) Fetch(ctx context.Context) []news.Article {
	return t.env.run(ctx, t.Name(), t.fetch)
}

func (t *TopHeadlines) fetch(ctx context.Context) ([]news.Article, error) {
	q := url.Values{}
	q.Set("country", t.country)
	q.Set("category", string(t.category))
	q.Set("pageSize", fmt.Sprint(t.env.MaxItems))
	q.Set("apiKey", t.apiKey)

	var resp newsAPIResponse
	if err := t.env.getJSON(ctx, t.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q", resp.Status)
	}

	arts := make([]news.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		published := parseTime(a.PublishedAt)
		source := a.Source.Name
		if source == "" {
			source = "NewsAPI"
		}
		arts = append(arts, news.Article{
			Title:       a.Title,
			Link:        a.URL,
			Content:     a.Description,
			PublishedAt: published,
			Source:      source,
			Category:    t.category,
			Image:       a.URLToImage,
			Region:      t.region,
		})
	}
	return t.env.admit(arts), nil
}

// parseTime falls back to fetch time when the source omits or mangles the
// timestamp.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}
