// Package logging builds the zap logger that writes to
// .taskboard/logs/taskboard.log so failures can be inspected after the
// terminal UI has exited.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/taskboard/internal/config"
)

// FileName is the log file inside the logs directory.
const FileName = "taskboard.log"

// Options controls where and how verbosely the logger writes.
type Options struct {
	// LogsDir receives FileName. Empty means WorkDir/.taskboard/logs.
	LogsDir string
	WorkDir string
	// Verbose lowers the level to debug.
	Verbose bool
	// Stderr mirrors output to stderr, used by the serve command.
	Stderr bool
}

// New creates (or reuses) the log file and returns a JSON zap logger bound to
// it.
func New(opts Options) (*zap.Logger, error) {
	logDir := opts.LogsDir
	if logDir == "" {
		logDir = filepath.Join(opts.WorkDir, config.Dir, "logs")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{filepath.Join(logDir, FileName)}
	cfg.ErrorOutputPaths = []string{filepath.Join(logDir, FileName)}
	if opts.Stderr {
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, "stderr")
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
