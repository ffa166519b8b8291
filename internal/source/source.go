// Package source contains one adapter per external news or trends source.
// Every adapter obeys the same fail-soft contract: on any network, parse or
// rate-limit failure it logs the failure with its identity and returns an
// empty slice. Errors never cross the adapter boundary.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"trendscope/internal/metrics"
	"trendscope/internal/news"
	"trendscope/internal/retry"
)

// Adapter fetches and normalizes articles from exactly one external source.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) []news.Article
}

// Env carries the shared plumbing every adapter needs. The application
// context constructs one Env at startup; tests build their own with a
// discard logger and an isolated metrics instance.
type Env struct {
	Client   *http.Client
	Log      *slog.Logger
	Metrics  *metrics.Metrics
	Retry    retry.Config
	MaxItems int
}

// run applies the fail-soft contract around a concrete fetch and emits the
// one structured log line per attempt the contract requires.
func (e *Env) run(ctx context.Context, name string, fn func(ctx context.Context) ([]news.Article, error)) []news.Article {
	arts, err := fn(ctx)
	if err != nil {
		e.Log.Warn("source fetch failed", "source", name, "error", err)
		if e.Metrics != nil {
			e.Metrics.IncrementSourceErrors()
		}
		return nil
	}
	e.Log.Info("source fetched", "source", name, "count", len(arts))
	return arts
}

// getJSON performs a GET with bounded retries and decodes a JSON payload.
func (e *Env) getJSON(ctx context.Context, url string, v any) error {
	return retry.Do(ctx, e.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := e.Client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("HTTP error: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
		return nil
	})
}

// admit filters out items missing title or link and applies the per-source
// item cap.
func (e *Env) admit(arts []news.Article) []news.Article {
	out := make([]news.Article, 0, len(arts))
	for _, a := range arts {
		if !a.Valid() {
			continue
		}
		out = append(out, a)
		if e.MaxItems > 0 && len(out) >= e.MaxItems {
			break
		}
	}
	return out
}
