package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_etl/internal/feature/history/adapters"
	"stock_etl/internal/feature/history/usecase"
	"stock_etl/internal/platform/cache"
	"stock_etl/internal/platform/db"
)

// NewHistoryRepository creates the relational history repository.
// If Redis is available, reads are cached and a successful load invalidates the cache.
func NewHistoryRepository(rdb *redis.Client, gdb *gorm.DB, log *slog.Logger) cache.HistoryRepository {
	repo := adapters.NewHistoryRepository(gdb, adapters.WithLogger(log))
	if rdb != nil {
		return cache.NewCachingHistoryRepository(rdb, cache.TimeUntilNextSession(time.Now()), repo, "history")
	}
	return repo
}

// NewConnectFunc returns a ConnectFunc that opens its own connection per call.
// The returned close function releases that connection.
func NewConnectFunc(cfg db.Config, rdb *redis.Client, log *slog.Logger) usecase.ConnectFunc {
	return func(ctx context.Context) (usecase.HistoryWriter, func() error, error) {
		gdb, err := db.OpenDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error { return db.Close(gdb) }
		return NewHistoryRepository(rdb, gdb, log), closeFn, nil
	}
}
