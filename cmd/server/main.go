package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock_etl/internal/app/di"
	"stock_etl/internal/app/router"
	"stock_etl/internal/feature/history/adapters/chart"
	historyhandler "stock_etl/internal/feature/history/transport/handler"
	"stock_etl/internal/feature/history/usecase"
	"stock_etl/internal/platform/db"
	"stock_etl/internal/platform/http/handler"
	"stock_etl/internal/platform/logger"
	platformredis "stock_etl/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	logg, logCloser, err := logger.New(logger.LoadConfigFromEnv("server"), time.Now())
	if err != nil {
		log.Fatal(err)
	}
	defer logCloser.Close()

	// db
	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		logg.Error("failed to connect to relational store", "error", err)
		os.Exit(1)
	}
	defer db.Close(gdb)

	// Redis
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfigFromEnv())
	cancel()
	if err != nil {
		logg.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				logg.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository（Redisキャッシュでラップ）
	repo := di.NewHistoryRepository(rdb, gdb, logg)

	// Usecase: サーバーでは画面表示しない
	comparisonUC := usecase.NewComparisonUsecase(repo, chart.NewRenderer(), nil, logg)

	imgDir := os.Getenv("IMG_PATH")
	if imgDir == "" {
		imgDir = os.TempDir()
	}

	// Handler
	historyH := historyhandler.NewHistoryHandler(repo, comparisonUC, imgDir)

	checks := []handler.Check{{
		Name: "db",
		Probe: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, handler.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	// ルータ生成
	r := router.NewRouter(historyH, checks...)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		logg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
