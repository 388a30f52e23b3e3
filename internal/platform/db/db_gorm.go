package db

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はリレーショナルストアへの接続設定です。
type Config struct {
	Driver         string        // mysql | postgres | sqlite
	Server         string        // host:port
	Name           string        // データベース名（sqliteの場合はファイルパス）
	User           string
	Password       string
	ConnectTimeout time.Duration // 0 の場合は1回だけ接続を試みる
}

// Opener は DSN から GORM の接続を開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:   strings.ToLower(os.Getenv("MYSQL_DRIVER")),
		Server:   os.Getenv("MYSQL_SERVER"),
		Name:     os.Getenv("MYSQL_DATABASE"),
		User:     os.Getenv("MYSQL_USERNAME"),
		Password: os.Getenv("MYSQL_PASSWORD"),
	}
	if cfg.Driver == "" {
		cfg.Driver = "mysql"
	}
	if d, err := time.ParseDuration(os.Getenv("DB_CONNECT_TIMEOUT")); err == nil {
		cfg.ConnectTimeout = d
	}
	return cfg
}

// BuildDSN は接続設定からドライバごとのDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case "postgres":
		host, port, err := net.SplitHostPort(cfg.Server)
		if err != nil {
			host, port = cfg.Server, "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, cfg.User, cfg.Password, cfg.Name)
	case "sqlite":
		return cfg.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Server, cfg.Name)
	}
}

// OpenerFor は設定されたドライバに対応する Opener を返します。
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "mysql", "":
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(gmysql.Open(dsn), gcfg) }, nil
	case "postgres":
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }, nil
	case "sqlite":
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectWithRetry は timeout に達するまで接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は設定に従ってリレーショナルストアに接続します。
// 呼び出し側は Close で接続を閉じる責任を持ちます。
func OpenDB(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, open)
}

// Close は GORM の下にある *sql.DB を閉じます。
func Close(db *gorm.DB) error {
	if db == nil {
		return errors.New("db: nil connection")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
