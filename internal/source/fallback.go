package source

import (
	"context"
	"fmt"

	"trendscope/internal/news"
)

// FallbackChain tries adapters in declared priority order until one yields a
// non-empty result. It replaces per-source nested fallback branches: a
// flaky primary (say, an HTML scrape) is backed by a stabler secondary
// (its RSS feed) without either knowing about the other.
type FallbackChain struct {
	name     string
	adapters []Adapter
}

func NewFallbackChain(name string, adapters ...Adapter) *FallbackChain {
	return &FallbackChain{name: name, adapters: adapters}
}

func (f *FallbackChain) Name() string {
	return fmt.Sprintf("fallback:%s", f.name)
}

func (f *FallbackChain) Fetch(ctx context.Context) []news.Article {
	for _, a := range f.adapters {
		if arts := a.Fetch(ctx); len(arts) > 0 {
			return arts
		}
	}
	return nil
}
