package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the process-wide logger. Init replaces it; packages that cannot take an
// injected logger fall back to it.
var L = slog.Default()

// Init configures the global slog logger from config values.
// level: debug|info|warn|error. format: text|json.
func Init(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}
