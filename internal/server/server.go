// Package server exposes the aggregation pipeline over a small REST
// surface.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"trendscope/internal/app"
)

// Routes advertised on 404 responses.
var apiRoutes = []string{
	"GET /api/health",
	"GET /api/categories",
	"GET /api/news",
	"GET /api/news/:category",
	"GET /api/trends",
	"GET /api/export",
}

type Server struct {
	app *app.App
}

func New(a *app.App) *Server {
	return &Server{app: a}
}

// Echo builds the configured echo instance. The caller owns startup and
// shutdown.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.OPTIONS},
	}))

	cfg := s.app.Cfg
	api := e.Group("/api")
	api.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.RateLimitMax) / cfg.RateLimitWindow.Seconds()),
			Burst:     cfg.RateLimitMax,
			ExpiresIn: cfg.RateLimitWindow,
		}),
	}))

	api.GET("/health", s.handleHealth)
	api.GET("/categories", s.handleCategories)
	api.GET("/news", s.handleNews)
	api.GET("/news/:category", s.handleNewsByCategory)
	api.GET("/trends", s.handleTrends)
	api.GET("/export", s.handleExport)

	return e
}

// errorHandler is the single point converting faults into responses: 404s
// advertise the route list, echo HTTP errors pass through, and anything
// else becomes a generic 500 with no internals leaked.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		if he.Code == http.StatusNotFound {
			_ = c.JSON(http.StatusNotFound, map[string]interface{}{
				"success": false,
				"error":   "route not found",
				"routes":  apiRoutes,
			})
			return
		}
		_ = c.JSON(he.Code, map[string]interface{}{
			"success": false,
			"error":   he.Message,
		})
		return
	}

	s.app.Log.Error("unhandled request error", "path", c.Path(), "error", err)
	_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"error":   "internal server error",
	})
}
