package logging

import (
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type impl struct {
	name  string
	level atomic.Int32
	zl    *zap.SugaredLogger
}

func newImpl(name string, level Level, zl *zap.SugaredLogger) *impl {
	l := &impl{name: name, zl: zl.Named(name)}
	l.level.Store(int32(level))
	return l
}

func (l *impl) Named(name string) Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	sub := newImpl(full, l.GetLevel(), l.zl)
	return sub
}

func (l *impl) SetLevel(level Level) { l.level.Store(int32(level)) }
func (l *impl) GetLevel() Level      { return Level(l.level.Load()) }

func (l *impl) shouldLog(level Level) bool {
	return level >= l.GetLevel()
}

func (l *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.zl.Debugw(msg, keysAndValues...)
	}
}

func (l *impl) Infow(msg string, keysAndValues ...interface{}) {
	if l.shouldLog(INFO) {
		l.zl.Infow(msg, keysAndValues...)
	}
}

func (l *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if l.shouldLog(WARN) {
		l.zl.Warnw(msg, keysAndValues...)
	}
}

func (l *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if l.shouldLog(ERROR) {
		l.zl.Errorw(msg, keysAndValues...)
	}
}

// Sync flushes the underlying zap logger, passing its error through
// multierr the way rdk/logging's impl.Sync combines appender flush errors.
func (l *impl) Sync() error {
	return multierr.Combine(l.zl.Sync())
}
