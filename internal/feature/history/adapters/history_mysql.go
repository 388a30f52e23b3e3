// Package adapters は history フィーチャーのリレーショナルストア実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

// TableName is the relational table holding the daily history.
const TableName = "tbl_historico_acoes"

const defaultBatchSize = 500

type historyMySQL struct {
	db        *gorm.DB
	batchSize int
	log       *slog.Logger
}

var (
	_ usecase.HistoryWriter = (*historyMySQL)(nil)
	_ usecase.HistoryReader = (*historyMySQL)(nil)
)

// Option configures the history repository.
type Option func(*historyMySQL)

// WithBatchSize sets how many rows go into a single INSERT statement.
func WithBatchSize(n int) Option {
	return func(r *historyMySQL) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger used to report load failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *historyMySQL) {
		if l != nil {
			r.log = l
		}
	}
}

// NewHistoryRepository returns a repository over tbl_historico_acoes.
// A nil db yields a repository whose Load is a no-op.
func NewHistoryRepository(db *gorm.DB, opts ...Option) *historyMySQL {
	r := &historyMySQL{db: db, batchSize: defaultBatchSize, log: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

type HistoryModel struct {
	ID     uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Ticker string    `gorm:"column:ticker;size:10;not null"`
	Open   float64   `gorm:"column:open;not null"`
	Close  float64   `gorm:"column:close;not null"`
	High   float64   `gorm:"column:high;not null"`
	Low    float64   `gorm:"column:low;not null"`
	Volume float64   `gorm:"column:volume;not null"`
	Data   time.Time `gorm:"column:data;type:date;not null"`
}

func (HistoryModel) TableName() string {
	return TableName
}

func toModel(e entity.TickerRecord) HistoryModel {
	return HistoryModel{
		Ticker: e.Ticker,
		Open:   e.Open,
		Close:  e.Close,
		High:   e.High,
		Low:    e.Low,
		Volume: e.Volume,
		Data:   e.Date,
	}
}

func toEntity(m HistoryModel) entity.TickerRecord {
	d := m.Data.UTC()
	return entity.TickerRecord{
		Ticker: m.Ticker,
		Date:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Open:   m.Open,
		Close:  m.Close,
		High:   m.High,
		Low:    m.Low,
		Volume: m.Volume,
	}
}

// resetStatements returns the create-if-absent and truncate statements for the
// connected dialect. Truncation also resets the auto-increment counter.
func resetStatements(dialect string) ([]string, error) {
	switch dialect {
	case "mysql":
		return []string{
			"CREATE TABLE IF NOT EXISTS " + TableName + ` (
				id INT PRIMARY KEY AUTO_INCREMENT,
				ticker VARCHAR(10) NOT NULL,
				open FLOAT NOT NULL,
				close FLOAT NOT NULL,
				high FLOAT NOT NULL,
				low FLOAT NOT NULL,
				volume FLOAT NOT NULL,
				data DATE NOT NULL
			)`,
			"TRUNCATE TABLE " + TableName,
		}, nil
	case "postgres":
		return []string{
			"CREATE TABLE IF NOT EXISTS " + TableName + ` (
				id SERIAL PRIMARY KEY,
				ticker VARCHAR(10) NOT NULL,
				open DOUBLE PRECISION NOT NULL,
				close DOUBLE PRECISION NOT NULL,
				high DOUBLE PRECISION NOT NULL,
				low DOUBLE PRECISION NOT NULL,
				volume DOUBLE PRECISION NOT NULL,
				data DATE NOT NULL
			)`,
			"TRUNCATE TABLE " + TableName + " RESTART IDENTITY",
		}, nil
	case "sqlite":
		return []string{
			"CREATE TABLE IF NOT EXISTS " + TableName + ` (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				ticker VARCHAR(10) NOT NULL,
				open REAL NOT NULL,
				close REAL NOT NULL,
				high REAL NOT NULL,
				low REAL NOT NULL,
				volume REAL NOT NULL,
				data DATE NOT NULL
			)`,
			"DELETE FROM " + TableName,
			"DELETE FROM sqlite_sequence WHERE name = '" + TableName + "'",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// EnsureTable creates tbl_historico_acoes if it does not exist and empties it.
func (r *historyMySQL) EnsureTable(ctx context.Context) error {
	stmts, err := resetStatements(r.db.Dialector.Name())
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := r.db.WithContext(ctx).Exec(s).Error; err != nil {
			return fmt.Errorf("reset %s: %w", TableName, err)
		}
	}
	return nil
}

// Load replaces the table contents with records inside a single transaction.
// Any insert error rolls back every row of this load.
// A nil record set leaves the table untouched; an empty one truncates it.
func (r *historyMySQL) Load(ctx context.Context, records []entity.TickerRecord) (int, error) {
	if r.db == nil {
		r.log.Warn("relational connection is not available; skipping load")
		return 0, nil
	}
	if records == nil {
		return 0, nil
	}

	if err := r.EnsureTable(ctx); err != nil {
		r.log.Error("failed to prepare table", "table", TableName, "error", err)
		return 0, err
	}
	if len(records) == 0 {
		r.log.Info("history table emptied", "table", TableName)
		return 0, nil
	}

	ms := make([]HistoryModel, 0, len(records))
	for _, e := range records {
		ms = append(ms, toModel(e))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{SkipDefaultTransaction: true}).
			CreateInBatches(&ms, r.batchSize).Error
	})
	if err != nil {
		r.log.Error("failed to insert history rows; transaction rolled back", "table", TableName, "error", err)
		return 0, err
	}

	r.log.Info("history rows inserted", "table", TableName, "rows", len(ms))
	return len(ms), nil
}

// FindByTickers fetches every row of the given tickers in one query,
// ordered by date.
func (r *historyMySQL) FindByTickers(ctx context.Context, tickers ...string) ([]entity.TickerRecord, error) {
	var rows []HistoryModel
	if err := r.db.WithContext(ctx).
		Where("ticker IN ?", tickers).
		Order("data ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.TickerRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
