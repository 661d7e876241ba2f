// Package logging wires log/slog for the service: console text output plus a
// weekly rotating JSON file, with package-level helpers usable before init.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// Options configures InitLoggerWithOptions
type Options struct {
	LogDir         string
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
}

// InitLogger initializes the global logger with default retention and level.
// An empty logDir logs to the console only.
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{LogDir: logDir, Level: "info", RetentionWeeks: 4, MaxFileSize: defaultMaxFileSize})
}

// InitLoggerWithOptions initializes the global logger and makes it the slog default
func InitLoggerWithOptions(opts Options) {
	logger, rotating := setupLogger(opts)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return nil
	}
	return DefaultLoggingService.rotating.Close()
}

// current returns the configured logger, or a console logger at level when
// InitLogger has not run yet
func current(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	current(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current(slog.LevelDebug).Debug(msg, args...)
}

// InfoContext logs with the request context so handlers keep request attributes
func InfoContext(ctx context.Context, msg string, args ...any) {
	current(slog.LevelInfo).InfoContext(ctx, msg, args...)
}
