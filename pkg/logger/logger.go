// Package logger exposes a process-wide zap logger with package-level helpers.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current atomic.Pointer[zap.Logger]
	// helpers skips the wrapper frame so callers are reported correctly.
	helpers atomic.Pointer[zap.Logger]
)

func init() {
	Set(nil)
}

// Init builds the global logger. level is one of debug, info, warn, error.
func Init(level string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the global logger, mostly for tests.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
	helpers.Store(l.WithOptions(zap.AddCallerSkip(1)))
}

// L returns the global logger for callers that log through it directly.
func L() *zap.Logger { return current.Load() }

func Debug(msg string, fields ...zap.Field) { helpers.Load().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { helpers.Load().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { helpers.Load().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { helpers.Load().Error(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { helpers.Load().Fatal(msg, fields...) }

func Sync() error { return L().Sync() }
