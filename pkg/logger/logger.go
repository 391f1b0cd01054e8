// Package logger provides opinionated logging for dialogen commands
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// NewLogger builds a console logger on stderr. Levels are coloured only when
// stderr is a terminal so redirected logs stay plain.
func NewLogger(debug bool) *zap.Logger {
	return New(os.Stderr, debug, term.IsTerminal(int(os.Stderr.Fd())))
}

// New builds a console logger writing to w.
func New(w zapcore.WriteSyncer, debug, color bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Set log level
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(w),
		level,
	)

	return zap.New(core, zap.AddCaller())
}
