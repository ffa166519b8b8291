package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server settings
	Port            string
	RequestTimeout  time.Duration // overall budget for an aggregate request
	RateLimitWindow time.Duration
	RateLimitMax    int

	// Upstream API keys
	NewsAPIKey string
	GNewsAPIKey string

	// Source settings
	SourcesConfigPath string
	SourceTimeout     time.Duration // per-adapter network timeout
	MaxPerSource      int           // item cap applied by each adapter
	DefaultRegion     string        // Google Trends geo code

	// Pipeline settings
	DedupThreshold float64 // title similarity above which two stories are the same
	MinTitleLength int     // normalized titles shorter than this are noise
	MaxPerCategory int

	// Cache settings
	CacheTTL time.Duration

	// Retry settings (adapters only)
	RetryAttempts int
	RetryDelay    time.Duration

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:              "8080",
		RequestTimeout:    9 * time.Second,
		RateLimitWindow:   15 * time.Minute,
		RateLimitMax:      100,
		SourcesConfigPath: "configs/sources.yaml",
		SourceTimeout:     10 * time.Second,
		MaxPerSource:      10,
		DefaultRegion:     "KE",
		DedupThreshold:    0.85,
		MinTitleLength:    10,
		MaxPerCategory:    10,
		CacheTTL:          600 * time.Second,
		RetryAttempts:     2,
		RetryDelay:        500 * time.Millisecond,
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	cfg.GNewsAPIKey = os.Getenv("GNEWS_API_KEY")

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.DefaultRegion = getEnvOrDefault("DEFAULT_REGION", cfg.DefaultRegion)

	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.SourceTimeout = getEnvDurationOrDefault("SOURCE_TIMEOUT", cfg.SourceTimeout)
	cfg.CacheTTL = getEnvDurationOrDefault("CACHE_TTL", cfg.CacheTTL)
	cfg.RateLimitWindow = getEnvDurationOrDefault("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)

	cfg.RateLimitMax = getEnvIntOrDefault("RATE_LIMIT_MAX", cfg.RateLimitMax)
	cfg.MaxPerSource = getEnvIntOrDefault("MAX_PER_SOURCE", cfg.MaxPerSource)
	cfg.MaxPerCategory = getEnvIntOrDefault("MAX_PER_CATEGORY", cfg.MaxPerCategory)
	cfg.MinTitleLength = getEnvIntOrDefault("MIN_TITLE_LENGTH", cfg.MinTitleLength)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("DEDUP_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val <= 1 {
			cfg.DedupThreshold = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("DEDUP_THRESHOLD must be in (0,1], got %v", c.DedupThreshold)
	}
	if c.MaxPerCategory <= 0 {
		return fmt.Errorf("MAX_PER_CATEGORY must be positive")
	}
	if c.MaxPerSource <= 0 {
		return fmt.Errorf("MAX_PER_SOURCE must be positive")
	}
	if c.SourceTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SourcesConfigPath == "" {
		return fmt.Errorf("SOURCES_CONFIG_PATH is required")
	}
	return nil
}
