// Package log provides the service-wide structured logger built on zap.
package log

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

var sugar atomic.Pointer[zap.SugaredLogger]

// Init builds the package logger. Debug selects zap's development config.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	sugar.Store(l.Sugar())
	return nil
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	sugar.Store(l.WithOptions(zap.AddCallerSkip(1)).Sugar())
}

// Logger returns the sugared logger, falling back to production defaults.
func Logger() *zap.SugaredLogger {
	if s := sugar.Load(); s != nil {
		return s
	}

	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	sugar.CompareAndSwap(nil, l.Sugar())
	return sugar.Load()
}

// Sync flushes buffered entries.
func Sync() {
	if s := sugar.Load(); s != nil {
		_ = s.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) { Logger().Debugw(msg, keysAndValues...) }
func Infow(msg string, keysAndValues ...interface{})  { Logger().Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...interface{})  { Logger().Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...interface{}) { Logger().Errorw(msg, keysAndValues...) }
func Infof(template string, args ...interface{})      { Logger().Infof(template, args...) }

// Fatalw logs and exits the process.
func Fatalw(msg string, keysAndValues ...interface{}) { Logger().Fatalw(msg, keysAndValues...) }
