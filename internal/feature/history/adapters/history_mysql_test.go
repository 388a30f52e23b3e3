package adapters

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// A single connection keeps every statement on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// setupMockDB wires GORM's MySQL dialect to sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "sqlmock new")
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gmysql.New(gmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err, "open gorm over sqlmock")

	return db, mock
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenarioRecords() []entity.TickerRecord {
	return []entity.TickerRecord{
		{Ticker: "PETR4.SA", Date: date(2020, 1, 1), Open: 10, Close: 11, High: 12, Low: 9, Volume: 1000},
		{Ticker: "PETR4.SA", Date: date(2020, 1, 2), Open: 11, Close: 12, High: 13, Low: 10, Volume: 1500},
		{Ticker: "VALE3.SA", Date: date(2020, 1, 1), Open: 50, Close: 51, High: 52, Low: 49, Volume: 3000},
	}
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&HistoryModel{}).Count(&count).Error)
	return count
}

func TestNewHistoryRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewHistoryRepository(db, WithBatchSize(10))

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
	assert.Equal(t, 10, repo.batchSize)

	repo = NewHistoryRepository(db, WithBatchSize(0))
	assert.Equal(t, defaultBatchSize, repo.batchSize, "non-positive batch size keeps the default")
}

func TestHistoryMySQL_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		records      []entity.TickerRecord
		batchSize    int
		setupFunc    func(t *testing.T, repo *historyMySQL)
		wantRows     int
		validateFunc func(t *testing.T, db *gorm.DB)
	}{
		{
			name:      "success: scenario rows are inserted",
			records:   scenarioRecords(),
			batchSize: 500,
			wantRows:  3,
			validateFunc: func(t *testing.T, db *gorm.DB) {
				assert.Equal(t, int64(3), countRows(t, db))

				var first HistoryModel
				require.NoError(t, db.Order("id ASC").First(&first).Error)
				assert.Equal(t, uint(1), first.ID)
				assert.Equal(t, "PETR4.SA", first.Ticker)
				assert.Equal(t, 10.0, first.Open)
				assert.Equal(t, 11.0, first.Close)
				assert.Equal(t, 12.0, first.High)
				assert.Equal(t, 9.0, first.Low)
				assert.Equal(t, 1000.0, first.Volume)
			},
		},
		{
			name:      "success: batch size smaller than rows",
			records:   scenarioRecords(),
			batchSize: 2,
			wantRows:  3,
			validateFunc: func(t *testing.T, db *gorm.DB) {
				assert.Equal(t, int64(3), countRows(t, db))
			},
		},
		{
			name:      "success: full refresh replaces previous rows and resets the id",
			records:   scenarioRecords()[:1],
			batchSize: 500,
			setupFunc: func(t *testing.T, repo *historyMySQL) {
				_, err := repo.Load(context.Background(), scenarioRecords())
				require.NoError(t, err)
			},
			wantRows: 1,
			validateFunc: func(t *testing.T, db *gorm.DB) {
				assert.Equal(t, int64(1), countRows(t, db))

				var first HistoryModel
				require.NoError(t, db.First(&first).Error)
				assert.Equal(t, uint(1), first.ID, "auto-increment should restart after truncation")
			},
		},
		{
			name:      "success: empty table still truncates previous rows",
			records:   usecase.Aggregate([][]entity.TickerRecord{{}, {}}),
			batchSize: 500,
			setupFunc: func(t *testing.T, repo *historyMySQL) {
				_, err := repo.Load(context.Background(), scenarioRecords())
				require.NoError(t, err)
			},
			wantRows: 0,
			validateFunc: func(t *testing.T, db *gorm.DB) {
				assert.Equal(t, int64(0), countRows(t, db), "a zero-row refresh empties the table")
			},
		},
		{
			name:      "success: nil payload is a no-op",
			records:   nil,
			batchSize: 500,
			setupFunc: func(t *testing.T, repo *historyMySQL) {
				_, err := repo.Load(context.Background(), scenarioRecords())
				require.NoError(t, err)
			},
			wantRows: 0,
			validateFunc: func(t *testing.T, db *gorm.DB) {
				assert.Equal(t, int64(3), countRows(t, db), "previous rows are untouched")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewHistoryRepository(db, WithBatchSize(tt.batchSize))
			if tt.setupFunc != nil {
				tt.setupFunc(t, repo)
			}

			n, err := repo.Load(context.Background(), tt.records)

			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, n)
			if tt.validateFunc != nil {
				tt.validateFunc(t, db)
			}
		})
	}
}

func TestHistoryMySQL_Load_NilDB(t *testing.T) {
	repo := NewHistoryRepository(nil)

	n, err := repo.Load(context.Background(), scenarioRecords())

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHistoryMySQL_Load_RollbackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	errBoom := errors.New("constraint violation")

	// Fail the second batch; with a batch size of 1 that is the second row.
	calls := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_second_batch", func(tx *gorm.DB) {
		if tx.Statement.Table != TableName {
			return
		}
		calls++
		if calls == 2 {
			_ = tx.AddError(errBoom)
		}
	})
	require.NoError(t, err)

	repo := NewHistoryRepository(db, WithBatchSize(1))
	n, err := repo.Load(context.Background(), scenarioRecords())

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(0), countRows(t, db), "no row of the failed load may remain")
}

func TestHistoryMySQL_Load_MySQLStatements(t *testing.T) {
	db, mock := setupMockDB(t)

	insert := regexp.QuoteMeta("INSERT INTO `tbl_historico_acoes` (`ticker`,`open`,`close`,`high`,`low`,`volume`,`data`) VALUES (?,?,?,?,?,?,?)")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs("PETR4.SA", 10.0, 11.0, 12.0, 9.0, 1000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).
		WithArgs("PETR4.SA", 11.0, 12.0, 13.0, 10.0, 1500.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(insert).
		WithArgs("VALE3.SA", 50.0, 51.0, 52.0, 49.0, 3000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	repo := NewHistoryRepository(db, WithBatchSize(1))
	n, err := repo.Load(context.Background(), scenarioRecords())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryMySQL_Load_MySQLRollback(t *testing.T) {
	db, mock := setupMockDB(t)
	errConstraint := errors.New("Error 1048: Column 'ticker' cannot be null")

	insert := regexp.QuoteMeta("INSERT INTO `tbl_historico_acoes`")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WillReturnError(errConstraint)
	mock.ExpectRollback()

	repo := NewHistoryRepository(db, WithBatchSize(1))
	n, err := repo.Load(context.Background(), scenarioRecords())

	assert.ErrorIs(t, err, errConstraint)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryMySQL_Load_MySQLEmptyTableTruncates(t *testing.T) {
	db, mock := setupMockDB(t)

	// No transaction and no INSERT when there is nothing to write.
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE tbl_historico_acoes")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewHistoryRepository(db)
	n, err := repo.Load(context.Background(), []entity.TickerRecord{})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryMySQL_Load_ResetFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	errDDL := errors.New("access denied")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tbl_historico_acoes")).
		WillReturnError(errDDL)

	repo := NewHistoryRepository(db)
	_, err := repo.Load(context.Background(), scenarioRecords())

	assert.ErrorIs(t, err, errDDL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryMySQL_FindByTickers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)

	records := append(scenarioRecords(),
		entity.TickerRecord{Ticker: "ITUB4.SA", Date: date(2019, 12, 30), Open: 30, Close: 31, High: 32, Low: 29, Volume: 900},
	)
	_, err := repo.Load(context.Background(), records)
	require.NoError(t, err)

	got, err := repo.FindByTickers(context.Background(), "PETR4.SA", "ITUB4.SA")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "ITUB4.SA", got[0].Ticker, "rows are ordered by date")
	assert.True(t, got[0].Date.Equal(date(2019, 12, 30)))
	assert.Equal(t, "PETR4.SA", got[1].Ticker)
	assert.True(t, got[1].Date.Equal(date(2020, 1, 1)))
	assert.Equal(t, 11.0, got[1].Close)

	none, err := repo.FindByTickers(context.Background(), "SANB11.SA")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryMySQL_FindByTickers_MySQLQuery(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "ticker", "open", "close", "high", "low", "volume", "data"}).
		AddRow(1, "ITUB4.SA", 30.0, 31.0, 32.0, 29.0, 900.0, date(2020, 1, 2)).
		AddRow(2, "SANB11.SA", 40.0, 41.0, 42.0, 39.0, 800.0, date(2020, 1, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tbl_historico_acoes` WHERE ticker IN (?,?) ORDER BY data ASC,id ASC")).
		WithArgs("ITUB4.SA", "SANB11.SA").
		WillReturnRows(rows)

	repo := NewHistoryRepository(db)
	got, err := repo.FindByTickers(context.Background(), "ITUB4.SA", "SANB11.SA")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SANB11.SA", got[1].Ticker)
	assert.Equal(t, 41.0, got[1].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetStatements(t *testing.T) {
	for _, d := range []string{"mysql", "postgres", "sqlite"} {
		stmts, err := resetStatements(d)
		require.NoError(t, err, d)
		assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS tbl_historico_acoes", d)
	}

	pg, _ := resetStatements("postgres")
	assert.Equal(t, "TRUNCATE TABLE tbl_historico_acoes RESTART IDENTITY", pg[1])

	_, err := resetStatements("sqlserver")
	assert.Error(t, err)
}
