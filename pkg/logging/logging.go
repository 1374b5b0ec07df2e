// Package logging provides the structured, greppable project log every
// component writes warnings and aborts to instead of ad hoc stderr prints.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the project log path relative to the project root.
const LogFileName = ".claude/ralph.log"

// New builds a logger that appends JSON lines to <projectPath>/.claude/ralph.log.
// If the log file cannot be opened, New falls back to a stderr logger so a
// logging failure never blocks the engine.
func New(projectPath string) *zap.Logger {
	path := filepath.Join(projectPath, LogFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fallback()
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fallback()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func fallback() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// Noop returns a logger that discards everything, for tests.
func Noop() *zap.Logger {
	return zap.NewNop()
}
