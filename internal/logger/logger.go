package logger

import (
	"log/slog"
	"os"
	"strings"
)

var (
	level         = new(slog.LevelVar) // zero value is info
	defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
)

// Init configures the process-wide logger. Commands that never call it
// still log text at info level, so one-shot tools stay readable.
func Init(lvl string, json bool) {
	level.Set(parseLevel(lvl))

	opts := &slog.HandlerOptions{Level: level}
	if json {
		defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(defaultLogger)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the process-wide logger.
func Get() *slog.Logger { return defaultLogger }

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger { return defaultLogger.With(args...) }
