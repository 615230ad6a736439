package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/audiograph/internal/config"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds an isolated logger writing to w. An empty level or format
// takes the configuration default; an unknown one is an error rather than a
// silent fallback, so a typo in log.level cannot hide debug output.
func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	if level == "" {
		level = config.DefaultLogLevel
	}
	if format == "" {
		format = config.DefaultLogFormat
	}

	lvl, ok := logLevels[level]
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
