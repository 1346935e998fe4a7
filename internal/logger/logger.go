// Package logger builds the slog logger shared by the explain command and
// the Lambda. The interactive session uses Discard instead.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"science-helper/internal/config"
)

// New logs to stderr so stdout stays free for the explain output, and makes
// the result the slog default. LOG_FORMAT=json suits CloudWatch; text lines
// carry the source position for local runs.
func New(cfg config.LogConfig) *slog.Logger {
	log := newWithWriter(cfg, os.Stderr)
	slog.SetDefault(log)
	return log
}

// Discard drops every record; log lines would tear the TUI's alt screen.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: true}))
}

// parseLevel maps LOG_LEVEL; anything unknown is info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
