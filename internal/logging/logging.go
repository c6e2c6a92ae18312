// Package logging is a small, self-contained descendant of rdk's logging
// package: a Logger interface backed by zap, with level control and named
// sub-loggers, sized for a library rather than a long-running server.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Level is a logging severity, ordered least to most severe.
type Level int32

// The four levels the engine logs at.
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// AsZap converts a Level to its zapcore equivalent.
func (l Level) AsZap() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is the logging interface used throughout shapedetect. It is
// intentionally narrow: structured, leveled logging with named sub-loggers,
// nothing more.
type Logger interface {
	Named(name string) Logger
	SetLevel(level Level)
	GetLevel() Level

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Sync() error
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, zap.Must(newProdConfig().Build()).Sugar())
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, zap.Must(newProdConfig().Build()).Sugar())
}

// NewTestLogger returns a logger that writes through the given testing.TB,
// at Debug level, so `go test -v` shows engine tracing inline with the test.
func NewTestLogger(tb testing.TB) Logger {
	return newImpl(tb.Name(), DEBUG, zaptest.NewLogger(tb).Sugar())
}

// NewBlankLogger returns a logger that discards everything. Useful as a
// default when a caller doesn't supply one.
func NewBlankLogger(name string) Logger {
	return newImpl(name, ERROR+1, zap.NewNop().Sugar())
}

func newProdConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	// Let every level through zap; the Logger's own level does the filtering.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}
