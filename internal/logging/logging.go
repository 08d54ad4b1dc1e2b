// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parisxmas/OxiDB/OxiForms/internal/config"
	"github.com/parisxmas/OxiDB/OxiForms/internal/gelf"
)

const serviceName = "oxiforms"

// New returns a console logger writing to w at the configured level, teed to
// Graylog when a GELF address is set. The returned func flushes and releases
// the sinks.
func New(cfg config.LoggingConfig, w io.Writer) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	var gelfCore *gelf.Core
	var gelfErr error
	if cfg.GelfAddr != "" {
		gelfCore, gelfErr = gelf.New(cfg.GelfAddr, serviceName, level)
		if gelfErr == nil {
			core = zapcore.NewTee(core, gelfCore)
		}
	}

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if gelfErr != nil {
		logger.Warn("GELF init failed", zap.String("addr", cfg.GelfAddr), zap.Error(gelfErr))
	} else if gelfCore != nil {
		logger.Info("GELF logging enabled", zap.String("addr", cfg.GelfAddr))
	}

	cleanup := func() {
		_ = logger.Sync()
		if gelfCore != nil {
			_ = gelfCore.Close()
		}
	}
	return logger, cleanup, nil
}
