package news

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Category identifies one of the fixed aggregation buckets. Adapters assign
// it at fetch time; the pipeline never reclassifies by content except for the
// explicit region filter on the global pseudo-category.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryPolitics      Category = "politics"
	CategoryBusiness      Category = "business"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryTechnology    Category = "technology"
	CategoryHealth        Category = "health"
	CategoryLifestyle     Category = "lifestyle"
	CategoryGlobal        Category = "global"
)

var categories = []Category{
	CategoryGeneral,
	CategoryPolitics,
	CategoryBusiness,
	CategorySports,
	CategoryEntertainment,
	CategoryTechnology,
	CategoryHealth,
	CategoryLifestyle,
	CategoryGlobal,
}

// Categories returns the fixed category set in presentation order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryNames returns the set as plain strings for error payloads.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func ValidCategory(s string) bool {
	for _, c := range categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Article is the unit of aggregation. Immutable once created; the pipeline
// only filters and re-wraps.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Content     string    `json:"content,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
	Category    Category  `json:"category"`
	Image       string    `json:"image,omitempty"`
	Region      string    `json:"region,omitempty"`
}

// Valid reports whether the article may enter the pipeline. Title and link
// are both required; anything else is optional.
func (a Article) Valid() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.Link) != ""
}

// AggregatedResponse is the envelope stored in the result cache and returned
// to clients.
type AggregatedResponse struct {
	Success    bool                   `json:"success"`
	Timestamp  time.Time              `json:"timestamp"`
	Categories map[Category][]Article `json:"categories"`
}

func (r *AggregatedResponse) Count() int {
	n := 0
	for _, arts := range r.Categories {
		n += len(arts)
	}
	return n
}

// Region keywords used to separate Kenyan coverage from the global bucket.
// Containment in title or content marks an article as regional.
var regionKeywords = []string{
	"kenya", "kenyan", "nairobi", "mombasa", "kisumu", "nakuru", "eldoret",
	"ruto", "raila", "azimio", "bunge", "harambee", "safaricom",
	"east africa", "county government",
}

// containsAny distinguishes phrases and short words so a two-letter keyword
// does not match inside unrelated words.
func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		// Phrases use plain substring match
		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		// Short tokens need a word boundary
		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// IsRegional reports whether the article references the configured region by
// keyword containment in title or content.
func IsRegional(a Article) bool {
	return containsAny(a.Title+" "+a.Content, regionKeywords)
}

// FilterGlobal drops articles that look regional. The global bucket is
// defined by exclusion, not by source selection.
func FilterGlobal(in []Article) []Article {
	out := make([]Article, 0, len(in))
	for _, a := range in {
		if IsRegional(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// MatchesKeywords confirms a search-API article actually mentions its
// category query; broad-query sources return ambiguously tagged items.
func MatchesKeywords(a Article, query string) bool {
	words := strings.Fields(query)
	if len(words) == 0 {
		return true
	}
	return containsAny(a.Title+" "+a.Content, words)
}

// SortByRecency orders newest first, keeping merge order for equal times.
func SortByRecency(arts []Article) {
	sort.SliceStable(arts, func(i, j int) bool {
		return arts[i].PublishedAt.After(arts[j].PublishedAt)
	})
}

// Cap truncates to at most n articles.
func Cap(arts []Article, n int) []Article {
	if n > 0 && len(arts) > n {
		return arts[:n]
	}
	return arts
}
