package logger

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalLogger holds the process-wide logger instance.
//
//nolint:gochecknoglobals // mirrors the package-level singleton every call site in this codebase relies on.
var globalLogger atomic.Pointer[zap.Logger]

// globalLevel is the atomic level gate shared by the logger and anything that
// wants to know the current verbosity without holding a reference to the logger itself.
//
//nolint:gochecknoglobals // single shared level across the process.
var globalLevel = zap.NewAtomicLevel()

// levelMu serializes SetLevel / rebuilds of the global logger.
//
//nolint:gochecknoglobals // guards globalLogger/globalLevel together.
var levelMu sync.Mutex

//nolint:gochecknoinits // the package must be usable before any explicit initialization call.
func init() {
	globalLevel.SetLevel(zapcore.InfoLevel)
	globalLogger.Store(New(globalLevel))
}

// New builds a zap logger writing human-readable console output at the given level.
// A nil level defaults to info.
func New(level zapcore.LevelEnabler) *zap.Logger {
	if level == nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(os.Stdout)),
		level)

	return zap.New(core)
}

// ParseLogLevel parses a case-insensitive, whitespace-tolerant log level name.
// It returns (zapcore.InfoLevel, false) when the input does not name a known level.
func ParseLogLevel(raw string) (zapcore.Level, bool) {
	var level zapcore.Level

	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return zapcore.InfoLevel, false
	}

	if err := level.UnmarshalText([]byte(trimmed)); err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Logger returns the current global logger.
func Logger() *zap.Logger {
	return globalLogger.Load()
}

// SetLogger replaces the global logger. Intended for tests and for wiring a
// differently-configured logger (e.g. with sinks) at startup.
func SetLogger(l *zap.Logger) {
	globalLogger.Store(l)
}

// Level returns the current global log level.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// IsDebugLevel reports whether the global log level is debug.
func IsDebugLevel() bool {
	return Level() == zapcore.DebugLevel
}

// SetLevel updates the global log level and rebuilds the logger so the new
// level takes effect immediately.
func SetLevel(level zapcore.Level) {
	levelMu.Lock()
	defer levelMu.Unlock()

	globalLevel.SetLevel(level)
	globalLogger.Store(New(globalLevel))
}

// Debug logs a message at debug level.
func Debug(_ context.Context, msg string) { Logger().Debug(msg) }

// Debugf logs a formatted message at debug level.
func Debugf(_ context.Context, format string, args ...any) { Logger().Sugar().Debugf(format, args...) }

// DebugKV logs a message at debug level with structured key-value pairs.
func DebugKV(_ context.Context, msg string, kv ...any) { Logger().Sugar().Debugw(msg, kv...) }

// Info logs a message at info level.
func Info(_ context.Context, msg string) { Logger().Info(msg) }

// Infof logs a formatted message at info level.
func Infof(_ context.Context, format string, args ...any) { Logger().Sugar().Infof(format, args...) }

// InfoKV logs a message at info level with structured key-value pairs.
func InfoKV(_ context.Context, msg string, kv ...any) { Logger().Sugar().Infow(msg, kv...) }

// Warn logs a message at warn level.
func Warn(_ context.Context, msg string) { Logger().Warn(msg) }

// Warnf logs a formatted message at warn level.
func Warnf(_ context.Context, format string, args ...any) { Logger().Sugar().Warnf(format, args...) }

// WarnKV logs a message at warn level with structured key-value pairs.
func WarnKV(_ context.Context, msg string, kv ...any) { Logger().Sugar().Warnw(msg, kv...) }

// Error logs a message at error level.
func Error(_ context.Context, msg string) { Logger().Error(msg) }

// Errorf logs a formatted message at error level.
func Errorf(_ context.Context, format string, args ...any) { Logger().Sugar().Errorf(format, args...) }

// ErrorKV logs a message at error level with structured key-value pairs.
func ErrorKV(_ context.Context, msg string, kv ...any) { Logger().Sugar().Errorw(msg, kv...) }

// Fatalf logs a formatted message at fatal level then calls os.Exit(1).
func Fatalf(_ context.Context, format string, args ...any) { Logger().Sugar().Fatalf(format, args...) }
