// Package logging builds the zap loggers used by petsurf. The terminal UI
// owns stdout, so interactive sessions log to a file in the data directory;
// one-shot commands log to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file written inside the data directory.
const FileName = "petsurf.log"

// ParseLevel maps a config level string to a zap level. Unknown or empty
// strings mean info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// NewFile returns a JSON logger appending to FileName in dataDir.
func NewFile(dataDir, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.OutputPaths = []string{filepath.Join(dataDir, FileName)}
	config.ErrorOutputPaths = []string{filepath.Join(dataDir, FileName)}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building file logger: %w", err)
	}
	return logger.Named("petsurf"), nil
}

// NewConsole returns a human-readable logger on stderr.
func NewConsole(level string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building console logger: %w", err)
	}
	return logger.Named("petsurf"), nil
}
