package source

import (
	"context"
	"fmt"
	"net/url"

	"trendscope/internal/news"
)

const gnewsBaseURL = "https://gnews.io/api/v4/search"

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// Search queries the GNews search endpoint with a category-specific keyword
// query. Results come back ambiguously tagged, so the category router
// re-confirms the keyword match after the merge.
type Search struct {
	env      *Env
	apiKey   string
	query    string
	country  string
	category news.Category
	region   string
	baseURL  string
}

func NewSearch(env *Env, apiKey, query, country string, category news.Category, region string) *Search {
	return &Search{
		env:      env,
		apiKey:   apiKey,
		query:    query,
		country:  country,
		category: category,
		region:   region,
		baseURL:  gnewsBaseURL,
	}
}

func (s *Search) Name() string {
	return fmt.Sprintf("gnews:%s", s.category)
}

// Query exposes the keyword query for post-fetch confirmation.
func (s *Search) Query() string { return s.query }

func (s *Search) Fetch(ctx context.Context) []news.Article {
	return s.env.run(ctx, s.Name(), s.fetch)
}

func (s *Search) fetch(ctx context.Context) ([]news.Article, error) {
	q := url.Values{}
	q.Set("q", s.query)
	q.Set("lang", "en")
	if s.country != "" {
		q.Set("country", s.country)
	}
	q.Set("max", fmt.Sprint(s.env.MaxItems))
	q.Set("apikey", s.apiKey)

	var resp gnewsResponse
	if err := s.env.getJSON(ctx, s.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	arts := make([]news.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		content := a.Description
		if content == "" {
			content = a.Content
		}
		source := a.Source.Name
		if source == "" {
			source = "GNews"
		}
		arts = append(arts, news.Article{
			Title:       a.Title,
			Link:        a.URL,
			Content:     content,
			PublishedAt: parseTime(a.PublishedAt),
			Source:      source,
			Category:    s.category,
			Image:       a.Image,
			Region:      s.region,
		})
	}
	return s.env.admit(arts), nil
}
