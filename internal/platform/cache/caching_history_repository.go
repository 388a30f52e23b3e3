// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

// HistoryRepository is the relational repository being decorated.
type HistoryRepository interface {
	usecase.HistoryReader
	usecase.HistoryWriter
}

// CachingHistoryRepository decorates a HistoryRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingHistoryRepository struct {
	inner     HistoryRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ HistoryRepository = (*CachingHistoryRepository)(nil)

// NewCachingHistoryRepository decorates a HistoryRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "history".
func NewCachingHistoryRepository(rdb *redis.Client, ttl time.Duration, inner HistoryRepository, namespace string) *CachingHistoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "history"
	}
	return &CachingHistoryRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Load replaces the table contents and drops every cached query of the namespace.
func (c *CachingHistoryRepository) Load(ctx context.Context, records []entity.TickerRecord) (int, error) {
	// First load into the underlying repository (MySQL)
	n, err := c.inner.Load(ctx, records)
	if err != nil {
		return n, err
	}
	// Exit early if Redis is not configured or the table was not touched
	if c.rdb == nil || records == nil {
		return n, nil
	}
	// A full refresh invalidates every query
	_ = c.deleteByPattern(ctx, c.namespace+":*") // Best effort: don't fail if cache deletion fails
	return n, nil
}

// FindByTickers retrieves rows, checking cache first then falling back to the database.
func (c *CachingHistoryRepository) FindByTickers(ctx context.Context, tickers ...string) ([]entity.TickerRecord, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByTickers(ctx, tickers...)
	}

	key := c.cacheKey(tickers)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.TickerRecord
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByTickers(ctx, tickers...)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingHistoryRepository) cacheKey(tickers []string) string {
	parts := make([]string, 0, len(tickers))
	for _, t := range tickers {
		parts = append(parts, safe(t))
	}
	return fmt.Sprintf("%s:%s", c.namespace, strings.Join(parts, ","))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingHistoryRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	// Simple escaping of characters that are problematic for Redis keys
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, ",", "_")
	return s
}
