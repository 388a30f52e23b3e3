// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"stock_etl/internal/feature/history/adapters/yahoo"
	"stock_etl/internal/feature/history/usecase"
	infrahttp "stock_etl/internal/platform/http"
	"stock_etl/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured YahooMarket with HTTP client.
func NewMarket(cfg yahoo.Config) *yahoo.YahooMarket {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return yahoo.NewYahooMarket(cfg, httpClient)
}

// NewExtractor wires the Yahoo client and a per-minute rate limiter into the extractor.
func NewExtractor(log *slog.Logger) *usecase.ExtractUsecase {
	cfg := yahoo.LoadConfig()
	rl := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	return usecase.NewExtractUsecase(NewMarket(cfg), rl, log)
}
