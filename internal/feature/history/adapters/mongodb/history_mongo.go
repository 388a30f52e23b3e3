// Package mongodb stores the daily history as one MongoDB collection per ticker.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

// ErrNoDatabase is returned when the store was built without a database handle.
var ErrNoDatabase = errors.New("mongodb: database handle is nil")

// HistoryDocument is the persisted form of one trading day. Field names are
// the labels consumers of the collections already read.
type HistoryDocument struct {
	Ticker string    `bson:"Ticker"`
	Date   time.Time `bson:"Data"`
	Open   float64   `bson:"Preço de Abertura"`
	Close  float64   `bson:"Preço de Fechamento"`
	High   float64   `bson:"Preço Mais Alto"`
	Low    float64   `bson:"Preço Mais Baixo"`
}

// database is the subset of *mongo.Database the store needs.
type database interface {
	ListCollectionNames(ctx context.Context, filter any) ([]string, error)
	Collection(name string) collection
}

type collection interface {
	Drop(ctx context.Context) error
	InsertMany(ctx context.Context, docs []any) error
}

// HistoryStore is the DocumentStore backed by MongoDB.
type HistoryStore struct {
	db  database
	log *slog.Logger
}

var _ usecase.DocumentStore = (*HistoryStore)(nil)

// NewHistoryStore wraps a connected *mongo.Database.
func NewHistoryStore(db *mongo.Database, log *slog.Logger) *HistoryStore {
	var d database
	if db != nil {
		d = driverDatabase{db: db}
	}
	return newHistoryStore(d, log)
}

func newHistoryStore(db database, log *slog.Logger) *HistoryStore {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryStore{db: db, log: log}
}

// Reset drops every collection of the database, indexes included.
func (s *HistoryStore) Reset(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range names {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop collection %s: %w", name, err)
		}
		s.log.Info("collection dropped", "collection", name)
	}
	return nil
}

// Load writes one collection per ticker with a single bulk insert each.
// An empty or nil record set writes nothing.
func (s *HistoryStore) Load(ctx context.Context, records []entity.TickerRecord) error {
	if len(records) == 0 {
		return nil
	}
	if s.db == nil {
		return ErrNoDatabase
	}

	for _, ticker := range entity.Tickers(records) {
		docs := documentsFor(records, ticker)
		if err := s.db.Collection(ticker).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert %s: %w", ticker, err)
		}
		s.log.Info("ticker documents inserted", "ticker", ticker, "documents", len(docs))
	}
	s.log.Info("document store load finished", "tickers", len(entity.Tickers(records)))
	return nil
}

func documentsFor(records []entity.TickerRecord, ticker string) []any {
	docs := make([]any, 0)
	for _, r := range records {
		if r.Ticker != ticker {
			continue
		}
		docs = append(docs, HistoryDocument{
			Ticker: r.Ticker,
			Date:   r.Date,
			Open:   r.Open,
			Close:  r.Close,
			High:   r.High,
			Low:    r.Low,
		})
	}
	return docs
}

// driverDatabase adapts *mongo.Database to database.
type driverDatabase struct {
	db *mongo.Database
}

func (d driverDatabase) ListCollectionNames(ctx context.Context, filter any) ([]string, error) {
	return d.db.ListCollectionNames(ctx, filter)
}

func (d driverDatabase) Collection(name string) collection {
	return driverCollection{c: d.db.Collection(name)}
}

type driverCollection struct {
	c *mongo.Collection
}

func (c driverCollection) Drop(ctx context.Context) error {
	return c.c.Drop(ctx)
}

func (c driverCollection) InsertMany(ctx context.Context, docs []any) error {
	_, err := c.c.InsertMany(ctx, docs)
	return err
}
