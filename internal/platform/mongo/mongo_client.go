// Package mongo connects to the MongoDB document store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Config holds the document store connection settings.
type Config struct {
	URI      string // e.g. "mongodb://localhost:27017"
	Database string // target database; every collection in it is replaced on each run
}

// LoadConfigFromEnv reads MONGO_URI and MONGO_DATABASE.
func LoadConfigFromEnv() Config {
	return Config{
		URI:      os.Getenv("MONGO_URI"),
		Database: os.Getenv("MONGO_DATABASE"),
	}
}

// NewMongoClient connects and pings the server.
// The caller owns the client and must Disconnect it.
func NewMongoClient(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: MONGO_URI is not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	// 接続確認
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("MongoDB connection failed", "error", err)
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("MongoDB connection successful", "database", cfg.Database)
	return client, nil
}
