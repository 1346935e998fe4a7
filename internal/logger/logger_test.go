package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"science-helper/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(config.LogConfig{Level: "info", Format: "JSON"}, &buf)
	log.Info("run finished", slog.String("run_id", "r1"), slog.Int("records", 2))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "run finished", m["msg"])
	require.Equal(t, "r1", m["run_id"])
	require.EqualValues(t, 2, m["records"])
}

func TestNewWithWriter_TextHasSource(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	log.Debug("source test")

	require.Contains(t, buf.String(), "source=")
	require.Contains(t, buf.String(), "source test")
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	log.Info("hidden")
	log.Warn("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Equal(t, 1, strings.Count(buf.String(), "shown"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLevel(in), "input=%q", in)
	}
}

func TestNew_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	log := New(config.LogConfig{Level: "error", Format: "json"})
	require.Same(t, log, slog.Default())
}

func TestDiscard(t *testing.T) {
	require.NotPanics(t, func() { Discard().Error("dropped") })
}
