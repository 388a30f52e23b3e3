// Package yahoo provides a client for the Yahoo Finance chart API.
package yahoo

import (
	"os"
	"strconv"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo Finance chart client.
type Config struct {
	BaseURL   string        // Base URL for the API (e.g., "https://query1.finance.yahoo.com")
	UserAgent string        // User-Agent header; the API rejects requests without one
	Timeout   time.Duration // HTTP request timeout
	RateLimit int           // Maximum requests per minute (0 = unlimited)
}

// LoadConfig loads Yahoo Finance configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:   os.Getenv("YAHOO_BASE_URL"),
		UserAgent: os.Getenv("YAHOO_USER_AGENT"),
		Timeout:   30 * time.Second,
		RateLimit: 60,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; stock-etl/1.0)"
	}
	if v, err := strconv.Atoi(os.Getenv("YAHOO_RATE_LIMIT")); err == nil {
		cfg.RateLimit = v
	}
	return cfg
}
