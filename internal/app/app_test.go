package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscope/internal/config"
	"trendscope/internal/logger"
	"trendscope/internal/news"
	"trendscope/internal/route"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Fixture Feed</title>
    <item>
      <title>County assembly approves water project funding</title>
      <link>https://f.co/1</link>
      <pubDate>Fri, 28 Aug 2026 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title>County assembly approves water project funding!</title>
      <link>https://f.co/2</link>
      <pubDate>Fri, 28 Aug 2026 09:05:00 +0000</pubDate>
    </item>
    <item>
      <title>Teachers union calls off planned strike</title>
      <link>https://f.co/3</link>
      <pubDate>Fri, 28 Aug 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func testApp(t *testing.T, feedURL string) *App {
	t.Helper()

	cfg := &config.Config{
		SourceTimeout:  2 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxPerSource:   10,
		MaxPerCategory: 10,
		DedupThreshold: 0.85,
		MinTitleLength: 10,
		CacheTTL:       time.Minute,
		DefaultRegion:  "KE",
		RetryAttempts:  1,
	}

	routes := &route.Routes{Categories: map[string][]route.SourceConfig{
		"general": {{Kind: route.KindRSSFeed, Name: "fixture", URL: feedURL}},
	}}

	return NewWithRoutes(cfg, logger.Discard(), routes)
}

func fixtureServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestAggregatePipeline(t *testing.T) {
	srv, _ := fixtureServer(t)
	a := testApp(t, srv.URL)

	resp := a.Aggregate(context.Background())
	require.True(t, resp.Success)

	general := resp.Categories[news.CategoryGeneral]
	require.Len(t, general, 2, "duplicate titles must collapse")
	assert.Equal(t, "Teachers union calls off planned strike", general[0].Title, "newest first")
	assert.Equal(t, "https://f.co/1", general[1].Link, "first-seen duplicate retained")

	// Categories without configured sources are present and empty
	assert.Empty(t, resp.Categories[news.CategorySports])
}

func TestAggregateCacheHitSkipsFetch(t *testing.T) {
	srv, hits := fixtureServer(t)
	a := testApp(t, srv.URL)

	first := a.Aggregate(context.Background())
	second := a.Aggregate(context.Background())

	assert.Same(t, first, second, "second call must be served from cache")
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.EqualValues(t, 1, hits.Load(), "cache hit must not dispatch upstream requests")
	assert.EqualValues(t, 1, a.Metrics.CacheHits)
}

func TestAggregateRefetchesAfterTTL(t *testing.T) {
	srv, hits := fixtureServer(t)
	a := testApp(t, srv.URL)
	a.Cfg.CacheTTL = 20 * time.Millisecond

	a.Aggregate(context.Background())
	time.Sleep(30 * time.Millisecond)
	a.Aggregate(context.Background())

	assert.EqualValues(t, 2, hits.Load())
}

func TestCategoryUsesOwnCacheKey(t *testing.T) {
	srv, hits := fixtureServer(t)
	a := testApp(t, srv.URL)

	catResp := a.Category(context.Background(), news.CategoryGeneral)
	require.Len(t, catResp.Categories, 1)
	require.NotEmpty(t, catResp.Categories[news.CategoryGeneral])

	// The aggregate is cached separately, so it fetches again
	a.Aggregate(context.Background())
	assert.EqualValues(t, 2, hits.Load())

	// Repeating the category request hits its cache
	again := a.Category(context.Background(), news.CategoryGeneral)
	assert.Same(t, catResp, again)
}

func TestCachedAggregateOnlyAfterAssembly(t *testing.T) {
	srv, _ := fixtureServer(t)
	a := testApp(t, srv.URL)

	_, ok := a.CachedAggregate()
	assert.False(t, ok)

	a.Aggregate(context.Background())
	resp, ok := a.CachedAggregate()
	require.True(t, ok)
	assert.NotZero(t, resp.Count())
}

func TestValidateCategory(t *testing.T) {
	srv, _ := fixtureServer(t)
	a := testApp(t, srv.URL)

	assert.NoError(t, a.ValidateCategory("general"))
	assert.Error(t, a.ValidateCategory("not-a-real-category"))
}
