package di

import (
	"context"
	"log/slog"

	"stock_etl/internal/feature/history/adapters/mongodb"
	platformmongo "stock_etl/internal/platform/mongo"
)

// NewDocumentStore connects to MongoDB and returns the document store with its release func.
// A failed connection is logged and yields a store without a database, so the
// document stages fail on their own while the rest of the pipeline still runs.
func NewDocumentStore(ctx context.Context, cfg platformmongo.Config, log *slog.Logger) (*mongodb.HistoryStore, func()) {
	client, err := platformmongo.NewMongoClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to MongoDB; document stages will be skipped", "error", err)
		return mongodb.NewHistoryStore(nil, log), func() {}
	}

	release := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect MongoDB", "error", err)
		}
	}
	return mongodb.NewHistoryStore(client.Database(cfg.Database), log), release
}
