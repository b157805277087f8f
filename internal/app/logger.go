package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fernwood-lab/studyflow-backend/internal/config"
)

// NewLogger builds the process logger from LogConfig and installs it as the
// slog default, so package-level slog calls and libraries that log through
// slog share one handler. Format "json" suits log ingestion in deployment;
// "text" adds source locations for local work. Output goes to stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel maps the configured name to a slog.Level. Unknown names fall
// back to info rather than erroring, so a typo in LOG_LEVEL cannot silence
// the service.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
