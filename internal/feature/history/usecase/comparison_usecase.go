package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stock_etl/internal/feature/history/domain/entity"
)

// HistoryReader はリレーショナルストアから銘柄の履歴を読み取ります。
type HistoryReader interface {
	// FindByTickers は指定された銘柄の全行を1回のクエリで取得します。
	FindByTickers(ctx context.Context, tickers ...string) ([]entity.TickerRecord, error)
}

// Series is one ticker's closing price line, in chronological order.
type Series struct {
	Ticker  string
	Records []entity.TickerRecord
}

// ComparisonChart is the input of a ChartRenderer.
type ComparisonChart struct {
	First  Series
	Second Series
}

// ChartRenderer は比較チャートを画像ファイルとして書き出します。
type ChartRenderer interface {
	RenderComparison(chart ComparisonChart, path string) error
}

// ChartViewer は保存済みのチャートを表示します。
type ChartViewer interface {
	Show(ctx context.Context, path string) error
}

// ComparisonUsecase は2銘柄の終値推移を比較するチャートを生成します。
type ComparisonUsecase struct {
	history  HistoryReader
	renderer ChartRenderer
	viewer   ChartViewer
	log      *slog.Logger
}

// NewComparisonUsecase は新しい ComparisonUsecase を作成します。viewer が nil の場合は表示しません。
func NewComparisonUsecase(history HistoryReader, renderer ChartRenderer, viewer ChartViewer, log *slog.Logger) *ComparisonUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &ComparisonUsecase{history: history, renderer: renderer, viewer: viewer, log: log}
}

// ComparisonFileName は2銘柄から決定的に導かれるPNGファイル名を返します。
func ComparisonFileName(first, second string) string {
	return fmt.Sprintf("comparacao_entre_%s_%s.png", first, second)
}

// Compare は2銘柄の履歴を取得してチャートを folder に保存し、保存先のパスを返します。
// エラーは処理せずに呼び出し元へ返します。
func (cu *ComparisonUsecase) Compare(ctx context.Context, first, second, folder string) (string, error) {
	rows, err := cu.history.FindByTickers(ctx, first, second)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}

	chart := ComparisonChart{
		First:  Series{Ticker: first},
		Second: Series{Ticker: second},
	}
	// クライアント側で銘柄ごとに分割
	for _, r := range rows {
		switch r.Ticker {
		case first:
			chart.First.Records = append(chart.First.Records, r)
		case second:
			chart.Second.Records = append(chart.Second.Records, r)
		}
	}
	for _, s := range []Series{chart.First, chart.Second} {
		if len(s.Records) == 0 {
			return "", fmt.Errorf("%w: %s", ErrEmptyHistory, s.Ticker)
		}
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	path := filepath.Join(folder, ComparisonFileName(first, second))
	if err := cu.renderer.RenderComparison(chart, path); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	cu.log.Info("comparison chart saved", "path", path)

	if cu.viewer != nil {
		if err := cu.viewer.Show(ctx, path); err != nil {
			return path, fmt.Errorf("show chart: %w", err)
		}
	}
	return path, nil
}
