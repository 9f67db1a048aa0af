// Package logging builds the zap logger shared by the app.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console logger writing to stderr at the given level
func New(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = level > zapcore.DebugLevel
	return cfg.Build()
}

// Must is New for startup code that cannot continue without a logger
func Must(level zapcore.Level) *zap.Logger {
	log, err := New(level)
	if err != nil {
		panic(err)
	}
	return log
}
