package app

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rangebrush/internal/config"
)

func TestNewLoggerJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rangebrush.log")
	var level slog.LevelVar

	logger, closer, err := NewLogger(config.LogConfig{Level: "warn", Format: "json", File: path}, &level)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "v0", 1.5)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, 1.5, rec["v0"])
}

func TestNewLoggerNoFileDiscards(t *testing.T) {
	logger, closer, err := NewLogger(config.LogConfig{Level: "debug", Format: "text"}, nil)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestNewLoggerBadLevel(t *testing.T) {
	var level slog.LevelVar
	_, _, err := NewLogger(config.LogConfig{Level: "chatty"}, &level)
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	var level slog.LevelVar
	require.NoError(t, SetLevel(&level, "debug"))
	assert.Equal(t, slog.LevelDebug, level.Level())

	require.NoError(t, SetLevel(&level, "ERROR"))
	assert.Equal(t, slog.LevelError, level.Level())

	assert.NoError(t, SetLevel(nil, "info"))
}
