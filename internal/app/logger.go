package app

import (
	"io"
	"log/slog"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidLogLevel reports whether s names a supported log level.
func ValidLogLevel(s string) bool {
	_, ok := logLevels[s]
	return ok
}

// ValidLogFormat reports whether s names a supported log format.
func ValidLogFormat(s string) bool {
	return s == "text" || s == "json"
}

// newLogger builds an isolated logger writing to outW. Unknown levels fall
// back to info and unknown formats to text.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
