// Package logging provides the engine-wide structured logger. It mirrors
// the teacher's nstlog package: a package-level *zap.Logger guarded by a
// mutex, reconfigurable at runtime, JSON-encoded with ISO8601 timestamps.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

func init() {
	SetLevel("info")
}

// SetLevel reconfigures the package logger at the given level (debug, info,
// warn, error, dpanic, panic, fatal; unrecognized values fall back to info).
func SetLevel(level string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	var zl zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	case "dpanic":
		zl = zapcore.DPanicLevel
	case "panic":
		zl = zapcore.PanicLevel
	case "fatal":
		zl = zapcore.FatalLevel
	default:
		zl = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zl,
	)

	logger = zap.New(core)
}

// L returns the current package logger. Safe for concurrent use.
func L() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Named returns a child logger scoped to the given component name, e.g.
// logging.Named("merge").
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// SetLogger replaces the package logger wholesale, e.g. with a no-op logger
// in tests (zap.NewNop()) or a sink that captures records for assertions.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}
