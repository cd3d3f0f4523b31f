// Package logger provides opinionated logging capabilities for the detour system
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a console logger writing to stderr at Info level, or
// Debug level when debug is true.
func NewLogger(debug bool) *zap.Logger {
	return NewLoggerWithWriters(debug, os.Stderr)
}

// NewLoggerWithWriters creates a console logger writing to the given
// writers. Tests use it to capture output.
func NewLoggerWithWriters(debug bool, writers ...io.Writer) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	return zap.New(newCore(level, writers), zap.AddCaller())
}

// NewLeveledLogger is like NewLoggerWithWriters but also returns the
// logger's AtomicLevel so callers can raise or lower verbosity at runtime,
// e.g. when a configuration reload flips the debug flag.
func NewLeveledLogger(debug bool, writers ...io.Writer) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}

	return zap.New(newCore(level, writers), zap.AddCaller()), level
}

func newCore(level zapcore.LevelEnabler, writers []io.Writer) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		level,
	)
}
