package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dshills/rangebrush/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the application logger from cfg. The level is held in
// level so that a config reload can change it. With no log file all
// output is discarded, since the terminal belongs to the UI.
//
// The returned closer releases the log file.
func NewLogger(cfg config.LogConfig, level *slog.LevelVar) (*slog.Logger, io.Closer, error) {
	if err := SetLevel(level, cfg.Level); err != nil {
		return nil, nil, err
	}
	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(newHandler(f, cfg.Format, level)), f, nil
}

func newHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetLevel parses name ("debug", "info", "warn", "error") into level.
func SetLevel(level *slog.LevelVar, name string) error {
	if level == nil {
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	level.Set(l)
	return nil
}
