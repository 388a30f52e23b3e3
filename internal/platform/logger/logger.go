// Package logger builds the *slog.Logger handed to every component.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging settings.
type Config struct {
	Dir   string     // LOG_PATH; empty logs to stderr only
	Name  string     // file prefix, e.g. "main" -> log_main_15_10_2026.log
	Level slog.Level // LOG_LEVEL
}

// LoadConfigFromEnv reads LOG_PATH and LOG_LEVEL.
func LoadConfigFromEnv(name string) Config {
	return Config{
		Dir:   os.Getenv("LOG_PATH"),
		Name:  name,
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	}
}

// FileName returns the dated log file name for day.
func FileName(name string, day time.Time) string {
	return fmt.Sprintf("log_%s_%d_%d_%d.log", name, day.Day(), int(day.Month()), day.Year())
}

// New returns a text logger writing to stderr and, when Dir is set, appending
// to the dated log file. The returned closer releases the file.
func New(cfg Config, now time.Time) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName(cfg.Name, now)),
			MaxSize:    100, // MB
			MaxBackups: 5,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	return slog.New(h), closer, nil
}

// ParseLevel maps debug|info|warn|error to a slog level; default info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
