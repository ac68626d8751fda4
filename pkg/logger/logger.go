package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the API server and its middleware.
// Package-level helpers wrap a zap SugaredLogger; L() exposes the structured logger.

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newLogger(false)
	sugar = base.Sugar()
)

func newLogger(production bool) *zap.Logger {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	cfg.OutputPaths = []string{"stdout"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	s := strings.ToLower(strings.TrimSpace(l))
	switch s {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// UseProduction switches between the JSON production encoder and the console encoder.
func UseProduction(production bool) {
	replace(newLogger(production))
}

func replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { s().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { s().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { s().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { s().Errorf(format, v...) }

// Fatalf logs and exits the process.
func Fatalf(format string, v ...interface{}) { s().Fatalf(format, v...) }

func Debug(v string) { s().Debug(v) }
func Info(v string)  { s().Info(v) }
func Warn(v string)  { s().Warn(v) }
func Error(v string) { s().Error(v) }

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = L().Sync()
}

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
