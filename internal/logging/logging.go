// Package logging builds the process logger from config.LogConfig.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jacksonlee411/unit-roster/internal/config"
)

// New returns a logger and a sync func to call before exit. File output is
// rotated by lumberjack.
func New(cfg config.LogConfig) (*zap.Logger, func(), error) {
	return build(cfg, os.Stdout)
}

func build(cfg config.LogConfig, stdout io.Writer) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, func() {}, fmt.Errorf("logging: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, func() {}, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	var sinks []zapcore.WriteSyncer
	var rotator *lumberjack.Logger
	switch cfg.Output {
	case "", "stdout":
		sinks = append(sinks, zapcore.AddSync(stdout))
	case "file", "both":
		if cfg.File == "" {
			return nil, func() {}, fmt.Errorf("logging: file output needs a path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, func() {}, fmt.Errorf("logging: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
		if cfg.Output == "both" {
			sinks = append(sinks, zapcore.AddSync(stdout))
		}
	default:
		return nil, func() {}, fmt.Errorf("logging: unknown output %q", cfg.Output)
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, func() {
		_ = logger.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}, nil
}
