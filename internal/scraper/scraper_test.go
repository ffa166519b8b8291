package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func client() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

func TestFetchHeadlinesSelectorCascade(t *testing.T) {
	// Page matches none of the preferred selectors; the cascade must fall
	// through to the one that works.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="cards">
				<h2><a href="https://x.co/story-1">High court suspends housing levy rollout</a></h2>
				<h2><a href="https://x.co/story-2">Counties receive equitable share allocation</a></h2>
			</div>
		</body></html>`))
	}))
	defer srv.Close()

	got, err := FetchHeadlines(context.Background(), client(), srv.URL, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "High court suspends housing levy rollout", got[0].Title)
}

func TestFetchHeadlinesResolvesRelativeLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<article><h2><a href="/kenya/story-1">Coastal counties sign tourism pact</a></h2></article>
			<article><h2><a href="javascript:void(0)">Interactive widget headline here</a></h2></article>
		</body></html>`))
	}))
	defer srv.Close()

	got, err := FetchHeadlines(context.Background(), client(), srv.URL, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "non-http links must be skipped")
	assert.Equal(t, srv.URL+"/kenya/story-1", got[0].Link)
}

func TestFetchHeadlinesSkipsShortAndDuplicateLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h2><a href="/a">Short</a></h2>
			<h2><a href="/long-story">A headline long enough to keep around</a></h2>
			<h2><a href="/long-story">A headline long enough to keep around</a></h2>
		</body></html>`))
	}))
	defer srv.Close()

	got, err := FetchHeadlines(context.Background(), client(), srv.URL, nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchHeadlinesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h2><a href="/1">Headline number one goes here</a></h2>
			<h2><a href="/2">Headline number two goes here</a></h2>
			<h2><a href="/3">Headline number three goes here</a></h2>
		</body></html>`))
	}))
	defer srv.Close()

	got, err := FetchHeadlines(context.Background(), client(), srv.URL, nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchHeadlinesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := FetchHeadlines(context.Background(), client(), srv.URL, nil, 10)
	assert.Error(t, err)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing to see</p></body></html>`))
	}))
	defer empty.Close()

	_, err = FetchHeadlines(context.Background(), client(), empty.URL, nil, 10)
	assert.Error(t, err, "no matching selector should be an error for the adapter to absorb")
}
