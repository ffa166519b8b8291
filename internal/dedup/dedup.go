package dedup

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"trendscope/internal/news"
)

// Deduplicator collapses near-duplicate articles from overlapping sources.
// Exact link match catches verbatim mirrors; fuzzy title similarity catches
// the same story under different headlines. Comparison is O(n²) over
// retained titles, which is fine at per-request volumes (tens of items).
type Deduplicator struct {
	threshold   float64
	minTitleLen int
	sim         *metrics.SorensenDice
}

// New builds a deduplicator. threshold is the bigram similarity above which
// two normalized titles count as the same story (0.85 works well in
// practice but is deliberately tunable). minTitleLen rejects noise titles
// outright, independent of similarity.
func New(threshold float64, minTitleLen int) *Deduplicator {
	sim := metrics.NewSorensenDice()
	sim.CaseSensitive = false
	return &Deduplicator{
		threshold:   threshold,
		minTitleLen: minTitleLen,
		sim:         sim,
	}
}

// Deduplicate processes articles in input order and keeps the first-seen
// representative of every story. The input is never mutated.
func (d *Deduplicator) Deduplicate(in []news.Article) []news.Article {
	seenLinks := make(map[string]struct{}, len(in))
	var seenTitles []string
	out := make([]news.Article, 0, len(in))

	for _, a := range in {
		if !a.Valid() {
			continue
		}

		norm := NormalizeTitle(a.Title)
		if len([]rune(norm)) < d.minTitleLen {
			continue
		}

		if _, dup := seenLinks[a.Link]; dup {
			continue
		}

		if d.similarSeen(norm, seenTitles) {
			seenLinks[a.Link] = struct{}{}
			continue
		}

		seenLinks[a.Link] = struct{}{}
		seenTitles = append(seenTitles, norm)
		out = append(out, a)
	}

	return out
}

func (d *Deduplicator) similarSeen(norm string, seen []string) bool {
	for _, s := range seen {
		if s == norm {
			return true
		}
		if strutil.Similarity(norm, s, d.sim) > d.threshold {
			return true
		}
	}
	return false
}

// NormalizeTitle lowercases, strips everything that is not a letter, digit
// or space, and collapses whitespace.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b = append(b, r)
		case unicode.IsSpace(r):
			b = append(b, ' ')
		}
	}
	return strings.Join(strings.Fields(string(b)), " ")
}
