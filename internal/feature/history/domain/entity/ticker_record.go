// Package entity defines the domain models for the history feature.
package entity

import "time"

// TickerRecord is one trading day of OHLCV data for a ticker.
// Records are produced by the extractor and never modified afterwards.
type TickerRecord struct {
	Ticker string    // Exchange symbol (e.g., "PETR4.SA")
	Date   time.Time // Trading date (midnight UTC)
	Open   float64   // Opening price
	Close  float64   // Closing price
	High   float64   // Highest price of the day
	Low    float64   // Lowest price of the day
	Volume float64   // Traded volume
}

// Tickers returns the distinct ticker symbols of records in first-seen order.
func Tickers(records []TickerRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Ticker]; ok {
			continue
		}
		seen[r.Ticker] = struct{}{}
		out = append(out, r.Ticker)
	}
	return out
}
