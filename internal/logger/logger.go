// Package logger wraps zap behind package-level helpers so call sites stay
// one-liners. The context argument is accepted everywhere for request-scoped
// fields later; it is not inspected yet.
package logger

import (
    "context"
    "os"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var global = newDefault()

func newDefault() *zap.SugaredLogger {
    l, err := zap.NewProduction()
    if err != nil {
        os.Exit(1)
    }
    return l.Sugar()
}

// Init reconfigures the global logger with the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func Init(level string) {
    lvl, err := zapcore.ParseLevel(level)
    if err != nil {
        lvl = zapcore.InfoLevel
    }
    cfg := zap.NewProductionConfig()
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    l, err := cfg.Build()
    if err != nil {
        return
    }
    global = l.Sugar()
}

func Debugf(ctx context.Context, format string, args ...any) { global.Debugf(format, args...) }
func Infof(ctx context.Context, format string, args ...any)  { global.Infof(format, args...) }
func Warnf(ctx context.Context, format string, args ...any)  { global.Warnf(format, args...) }
func Errorf(ctx context.Context, format string, args ...any) { global.Errorf(format, args...) }

func Error(ctx context.Context, msg string) { global.Error(msg) }

// Fatal logs the error and exits. A nil error is ignored.
func Fatal(ctx context.Context, err error) {
    if err == nil {
        return
    }
    global.Fatal(err.Error())
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
    _ = global.Sync()
}
