package server

import (
	"context"
	"encoding/csv"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"trendscope/internal/news"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"status":     "ok",
		"categories": news.CategoryNames(),
		"sources":    s.app.SourceSummary(),
		"metrics":    s.app.Metrics.GetStats(),
	})
}

func (s *Server) handleCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": news.CategoryNames(),
	})
}

func (s *Server) handleNews(c echo.Context) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	resp := s.app.Aggregate(ctx)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleNewsByCategory(c echo.Context) error {
	category := c.Param("category")
	if err := s.app.ValidateCategory(category); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success":    false,
			"error":      "unknown category: " + category,
			"categories": news.CategoryNames(),
		})
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	resp := s.app.Category(ctx, news.Category(category))
	return c.JSON(http.StatusOK, resp)
}

// handleTrends serves the aggregate by default; with ?region= it serves the
// Google Trends daily feed for that region instead.
func (s *Server) handleTrends(c echo.Context) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	if region := c.QueryParam("region"); region != "" {
		return c.JSON(http.StatusOK, s.app.TrendsByRegion(ctx, region))
	}
	return c.JSON(http.StatusOK, s.app.Aggregate(ctx))
}

// handleExport writes the last cached aggregate as CSV. It never triggers
// an upstream fetch; without a populated cache it tells the caller how to
// populate it.
func (s *Server) handleExport(c echo.Context) error {
	resp, ok := s.app.CachedAggregate()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "No trends data available. Fetch /api/news first to populate the cache.",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="trendscope.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"Category", "Keyword", "Timestamp"}); err != nil {
		return err
	}

	// Deterministic row order regardless of map iteration
	cats := make([]string, 0, len(resp.Categories))
	for cat := range resp.Categories {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)

	for _, cat := range cats {
		for _, a := range resp.Categories[news.Category(cat)] {
			if err := w.Write([]string{cat, a.Title, a.PublishedAt.Format(time.RFC3339)}); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// requestContext bounds a request so hanging upstreams cannot hold the
// client past the platform limit.
func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), s.app.Cfg.RequestTimeout)
}
