package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
	gormLogger "gorm.io/gorm/logger"
)

// SetupLogger installs the process logger as slog.Default. When a log file is
// configured, records are written to both stderr and a rotating file.
func SetupLogger(cfg LoggingConfig) *slog.Logger {
	var w io.Writer = os.Stderr

	if strings.TrimSpace(cfg.File) != "" {
		w = io.MultiWriter(os.Stderr, &lj.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	logger := slog.New(newLogHandler(w, cfg))
	slog.SetDefault(logger)

	return logger
}

func newLogHandler(w io.Writer, cfg LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

func parseLogLevel(s string) slog.Level {
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

// gormLogLevel maps the application level onto GORM's logger. SQL statements
// are only traced at debug.
func gormLogLevel(s string) gormLogger.LogLevel {
	switch parseLogLevel(s) {
	case slog.LevelDebug:
		return gormLogger.Info
	case slog.LevelError:
		return gormLogger.Error
	default:
		return gormLogger.Warn
	}
}
