package router

import (
	"github.com/gin-gonic/gin"

	historyhandler "stock_etl/internal/feature/history/transport/handler"
	"stock_etl/internal/platform/http/handler"
)

// NewRouter registers the read-only endpoints.
func NewRouter(history *historyhandler.HistoryHandler, checks ...handler.Check) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	health := handler.Health(checks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// 株価履歴（読み取り専用）
	r.GET("/history/:ticker", history.GetHistory)
	// 2銘柄の終値比較チャート（PNG）
	r.GET("/comparison", history.GetComparison)

	return r
}
