package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stock_etl/internal/feature/history/adapters/yahoo/dto"
	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

// YahooMarket はYahoo Finance外部APIから日足データを取得するMarketRepository実装です。
type YahooMarket struct {
	cfg    Config
	client *http.Client
}

// YahooMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*YahooMarket)(nil)

// NewYahooMarket は指定された設定とHTTPクライアントでYahooMarketの新しいインスタンスを生成します。
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	return &YahooMarket{cfg: cfg, client: client}
}

// GetDailyHistory は [start, end) の日足データを取得し、entity.TickerRecordのスライスとして返します。
// 価格が欠けている日は結果に含めません。
func (y *YahooMarket) GetDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]entity.TickerRecord, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")

	// URLを生成
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.BaseURL, url.PathEscape(ticker), q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if y.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", y.cfg.UserAgent)
	}

	// リクエストを実行
	res, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	// JSONレスポンスをDTOにデコード（エラー時もエラー内容がJSONで返る）
	var body dto.ChartResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", ticker, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty result", ticker)
	}

	return toRecords(body.Chart.Result[0], start, end)
}

// toRecords はタイムスタンプと各列を揃えてドメインエンティティに変換します。
func toRecords(r dto.ChartResult, start, end time.Time) ([]entity.TickerRecord, error) {
	if len(r.Timestamp) == 0 || len(r.Indicators.Quote) == 0 {
		return []entity.TickerRecord{}, nil
	}
	q := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	if len(q.Open) != n || len(q.High) != n || len(q.Low) != n || len(q.Close) != n || len(q.Volume) != n {
		return nil, fmt.Errorf("yahoo: misaligned quote columns for %d timestamps", n)
	}

	startDay, endDay := truncateDay(start), truncateDay(end)
	records := make([]entity.TickerRecord, 0, n)
	for i, ts := range r.Timestamp {
		// 取引所のローカル日付に変換
		d := truncateDay(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
		if d.Before(startDay) || !d.Before(endDay) {
			continue
		}
		// 欠損値のある日はスキップ
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		var vol float64
		if q.Volume[i] != nil {
			vol = *q.Volume[i]
		}
		records = append(records, entity.TickerRecord{
			Date:   d,
			Open:   *q.Open[i],
			Close:  *q.Close[i],
			High:   *q.High[i],
			Low:    *q.Low[i],
			Volume: vol,
		})
	}
	return records, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
