package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sentinel-sim/sentinel/internal/config"
)

const logFile = "sentinel.log"

// setupLogging installs the default slog handler writing to w
func setupLogging(s *config.Settings, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(s.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openLogFile sends logs to sentinel.log under the state dir. The dashboard
// owns the terminal, so nothing may be written to stderr while it runs.
func openLogFile(s *config.Settings) (io.Closer, error) {
	if err := os.MkdirAll(s.StateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.StateDir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	setupLogging(s, f)
	return f, nil
}
