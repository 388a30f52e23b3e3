// Package usecase は株価履歴のETLと比較チャート生成のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/shared/ratelimiter"
)

// MarketRepository は日足の株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]entity.TickerRecord, error)
}

// ExtractUsecase は外部APIから銘柄ごとの日足データを取得し、1つのテーブルに集約します。
type ExtractUsecase struct {
	market      MarketRepository
	rateLimiter ratelimiter.RateLimiterInterface
	log         *slog.Logger
}

// NewExtractUsecase は新しい ExtractUsecase を作成します。
func NewExtractUsecase(market MarketRepository, rateLimiter ratelimiter.RateLimiterInterface, log *slog.Logger) *ExtractUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &ExtractUsecase{market: market, rateLimiter: rateLimiter, log: log}
}

// Extract は各銘柄の [start, end) の日足データを取得し、銘柄ごとのテーブルとして返します。
// 1銘柄でも失敗した場合はバッチ全体を中断し、部分的な結果は返しません。リトライは行いません。
func (eu *ExtractUsecase) Extract(ctx context.Context, tickers []string, start, end time.Time) ([][]entity.TickerRecord, error) {
	tables := make([][]entity.TickerRecord, 0, len(tickers))
	for _, ticker := range tickers {
		if eu.rateLimiter != nil {
			if err := eu.rateLimiter.WaitIfNeeded(ctx); err != nil {
				eu.log.Error("failed to extract market data", "ticker", ticker, "error", err)
				return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, ticker, err)
			}
		}

		rs, err := eu.market.GetDailyHistory(ctx, ticker, start, end)
		if err != nil {
			eu.log.Error("failed to extract market data", "ticker", ticker, "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, ticker, err)
		}

		// 取得したデータに銘柄コードを設定
		table := make([]entity.TickerRecord, len(rs))
		for i, r := range rs {
			r.Ticker = ticker
			table[i] = r
		}
		tables = append(tables, table)
	}

	eu.log.Info("market data extracted", "tickers", len(tickers))
	return tables, nil
}

// Aggregate は銘柄ごとのテーブルを入力順に連結します。重複排除やソートは行いません。
// 入力が空の場合は nil（ロード対象なし）を返します。
func Aggregate(tables [][]entity.TickerRecord) []entity.TickerRecord {
	if len(tables) == 0 {
		return nil
	}
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make([]entity.TickerRecord, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}
