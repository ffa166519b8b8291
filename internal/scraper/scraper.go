package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Headline is one link extracted from an HTML listing page.
type Headline struct {
	Title string
	Link  string
	Image string
}

// Selector cascade tried in order when a source config supplies none.
// News portals restructure their markup often; the first selector that
// yields anything wins.
var defaultSelectors = []string{
	"article h2 a",
	"article h3 a",
	".headline a",
	".article-title a",
	".teaser-title a",
	"h2 a",
	"h3 a",
}

// FetchHeadlines loads a page and extracts headline links using a cascading
// selector strategy. Relative links are resolved against the page URL.
func FetchHeadlines(ctx context.Context, client *http.Client, pageURL string, selectors []string, limit int) ([]Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "trendscope/1.0 (+news aggregator)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	if len(selectors) == 0 {
		selectors = defaultSelectors
	}

	var headlines []Headline
	for _, selector := range selectors {
		headlines = extract(doc, base, selector, limit)
		if len(headlines) > 0 {
			break
		}
	}

	if len(headlines) == 0 {
		return nil, fmt.Errorf("no headlines matched any selector")
	}
	return headlines, nil
}

func extract(doc *goquery.Document, base *url.URL, selector string, limit int) []Headline {
	var out []Headline
	seen := map[string]struct{}{}

	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Text())
		href, ok := s.Attr("href")
		if !ok || title == "" || len(title) < 10 {
			return true
		}

		link := resolveLink(base, href)
		if link == "" {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}

		h := Headline{Title: title, Link: link}
		if img, ok := s.Closest("article").Find("img").Attr("src"); ok {
			h.Image = resolveLink(base, img)
		}
		out = append(out, h)

		return limit <= 0 || len(out) < limit
	})

	return out
}

func resolveLink(base *url.URL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
