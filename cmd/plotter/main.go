package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock_etl/internal/feature/history/adapters"
	"stock_etl/internal/feature/history/adapters/chart"
	"stock_etl/internal/feature/history/usecase"
	"stock_etl/internal/platform/db"
	"stock_etl/internal/platform/logger"
)

const (
	firstTicker  = "ITUB4.SA"
	secondTicker = "SANB11.SA"
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 接続はこのプロセスが開き、このプロセスが閉じる
	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		logg.Error("failed to connect to relational store", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logg.Warn("failed to close relational connection", "error", err)
		}
	}()

	repo := adapters.NewHistoryRepository(gdb, adapters.WithLogger(logg))
	viewer := chart.CommandViewer{Command: os.Getenv("CHART_VIEWER")}
	uc := usecase.NewComparisonUsecase(repo, chart.NewRenderer(), viewer, logg)

	imgDir := os.Getenv("IMG_PATH")
	if imgDir == "" {
		imgDir = "."
	}

	path, err := uc.Compare(ctx, firstTicker, secondTicker, imgDir)
	if err != nil {
		logg.Error("failed to plot comparison", "first", firstTicker, "second", secondTicker, "error", err)
		return 1
	}
	logg.Info("comparison chart saved", "path", path)
	return 0
}
