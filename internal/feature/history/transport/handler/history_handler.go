// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/transport/http/dto"
	"stock_etl/internal/feature/history/usecase"
)

// HistoryReader は株価履歴の読み取りインターフェースです（利用者側で定義）。
type HistoryReader interface {
	FindByTickers(ctx context.Context, tickers ...string) ([]entity.TickerRecord, error)
}

// Comparer は2銘柄の比較チャートを生成するユースケースです。
type Comparer interface {
	Compare(ctx context.Context, first, second, folder string) (string, error)
}

// HistoryHandler は株価履歴のHTTPリクエストを処理します。
type HistoryHandler struct {
	history  HistoryReader
	comparer Comparer
	imgDir   string

	// 同じ銘柄ペアのチャート生成と配信を直列化する（ファイル名が同じため）
	renderLocks sync.Map // key: file name, value: *sync.Mutex
}

// NewHistoryHandler はHistoryHandlerを生成します。imgDirはチャートの出力先です。
func NewHistoryHandler(history HistoryReader, comparer Comparer, imgDir string) *HistoryHandler {
	return &HistoryHandler{history: history, comparer: comparer, imgDir: imgDir}
}

// GetHistory は銘柄の日次履歴を日付昇順のJSONで返します。
//
// エンドポイント例:
// GET /history/PETR4.SA
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	ticker := c.Param("ticker")

	records, err := h.history.FindByTickers(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no history for " + ticker})
		return
	}

	out := make([]dto.HistoryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.HistoryResponse{
			Ticker: r.Ticker,
			Date:   r.Date.UTC().Format("2006-01-02"),
			Open:   r.Open,
			Close:  r.Close,
			High:   r.High,
			Low:    r.Low,
			Volume: r.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetComparison は2銘柄の終値比較チャートを生成しPNGとして返します。
//
// エンドポイント例:
// GET /comparison?first=ITUB4.SA&second=SANB11.SA
func (h *HistoryHandler) GetComparison(c *gin.Context) {
	first := c.Query("first")
	second := c.Query("second")
	if first == "" || second == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "first and second are required"})
		return
	}

	mu := h.renderLock(usecase.ComparisonFileName(first, second))
	mu.Lock()
	defer mu.Unlock()

	path, err := h.comparer.Compare(c.Request.Context(), first, second, h.imgDir)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrEmptyHistory) {
			status = http.StatusNotFound
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.File(path)
}

func (h *HistoryHandler) renderLock(name string) *sync.Mutex {
	mu, _ := h.renderLocks.LoadOrStore(name, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
