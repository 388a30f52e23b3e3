package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.November, 5, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "log_main_5_11_2024.log", FileName("main", day))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_WritesDatedFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	day := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)

	log, closer, err := New(Config{Dir: dir, Name: "main", Level: slog.LevelInfo}, day)
	require.NoError(t, err)

	log.Info("dados extraídos", "tickers", 16)
	log.Debug("hidden")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(filepath.Join(dir, "log_main_30_11_2024.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "dados extraídos")
	assert.Contains(t, string(b), "tickers=16")
	assert.NotContains(t, string(b), "hidden")
}

func TestNew_StderrOnly(t *testing.T) {
	t.Parallel()

	log, closer, err := New(Config{Name: "main"}, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NoError(t, closer.Close())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_PATH", "/var/log/stock")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfigFromEnv("plotter")

	assert.Equal(t, "/var/log/stock", cfg.Dir)
	assert.Equal(t, "plotter", cfg.Name)
	assert.Equal(t, slog.LevelDebug, cfg.Level)
}
