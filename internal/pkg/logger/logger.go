// Package logger builds the application's zap logger from config and keeps
// the slog default pointed at the same core.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"cryptovision/internal/config"
)

// New constructs a production zap logger honoring the configured level and
// optional log file. It also installs a zapslog bridge as the slog default so
// libraries logging via log/slog share the same sink.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zcfg.OutputPaths = []string{"stdout", cfg.File}
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}

	slog.SetDefault(slog.New(zapslog.NewHandler(log.Core())))
	return log, nil
}

func parseLevel(levelStr string) (zapcore.Level, error) {
	switch strings.ToLower(levelStr) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %q", levelStr)
	}
}

// Must is a convenience for main: it exits on logger construction failure.
func Must(cfg config.LoggingConfig) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return log
}
