package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock_etl/internal/app/di"
	"stock_etl/internal/feature/history/usecase"
	"stock_etl/internal/platform/db"
	"stock_etl/internal/platform/logger"
	platformmongo "stock_etl/internal/platform/mongo"
	platformredis "stock_etl/internal/platform/redis"
)

// 取得対象のB3銘柄
var tickers = []string{
	"EQTL3.SA", "PETR4.SA", "VALE3.SA", "ITUB4.SA",
	"ITSA4.SA", "GOLL4.SA", "MGLU3.SA", "BBDC3.SA",
	"BBAS3.SA", "ABEV3.SA", "JBSS3.SA", "WEGE3.SA",
	"BPAC11.SA", "SANB11.SA", "SUZB3.SA", "GGBR4.SA",
}

var (
	start = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
)

func main() {
	os.Exit(run())
}

func run() int {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	logg, logCloser, err := logger.New(logger.LoadConfigFromEnv("main"), time.Now())
	if err != nil {
		log.Println("[ERROR] logger:", err)
		return 1
	}
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// MongoDB: 接続に失敗してもリレーショナルストアへのロードは続行する
	documents, releaseMongo := di.NewDocumentStore(ctx, platformmongo.LoadConfigFromEnv(), logg)
	defer releaseMongo()

	// Redis（任意）: 読み取りキャッシュの無効化に使用
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfigFromEnv())
	if err != nil {
		logg.Warn("Redis unavailable. Cache will not be invalidated.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	connect := di.NewConnectFunc(db.LoadConfigFromEnv(), rdb, logg)
	pipeline := usecase.NewPipelineUsecase(di.NewExtractor(logg), documents, connect, logg)

	report := pipeline.Run(ctx, tickers, start, end)
	if err := report.Err(); err != nil {
		logg.Error("pipeline finished with errors", "error", err)
		return 1
	}
	logg.Info("pipeline ok")
	return 0
}
