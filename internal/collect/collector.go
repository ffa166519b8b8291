// Package collect fans out a fixed set of source adapter invocations and
// merges their results.
package collect

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"trendscope/internal/news"
	"trendscope/internal/source"
)

// Collector launches every adapter concurrently and waits for all of them
// to settle. Merge order follows the static adapter list, never network
// completion order, so identical inputs always produce identical output —
// the deduplicator downstream depends on that.
type Collector struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Collector {
	return &Collector{log: log}
}

// FanOut runs all adapters and concatenates their articles in list order.
// A failing adapter already returns an empty slice under the fail-soft
// contract; a panicking one is contained here so siblings are unaffected.
func (c *Collector) FanOut(ctx context.Context, adapters []source.Adapter) []news.Article {
	results := make([][]news.Article, len(adapters))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range adapters {
		i, a := i, a
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("source adapter panicked", "source", a.Name(), "panic", r)
					results[i] = nil
				}
			}()
			results[i] = a.Fetch(ctx)
			return nil
		})
	}
	// Adapters never return errors, so Wait only synchronizes.
	_ = g.Wait()

	var merged []news.Article
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}
