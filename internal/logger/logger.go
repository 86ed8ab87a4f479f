package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Production bool
	// File enables a rotating log file in addition to stderr.
	File string
	// Writer overrides stderr, mostly for tests.
	Writer io.Writer
}

// New builds a logger. Production output is JSON, everything else is
// charm's human readable text format.
func New(cfg Config) (*log.Logger, error) {
	var writer io.Writer = os.Stderr
	if cfg.Writer != nil {
		writer = cfg.Writer
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = io.MultiWriter(writer, fileWriter)
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(cfg.Level),
		Prefix:          "yeardiary",
	}
	if cfg.Production {
		opts.Formatter = log.JSONFormatter
	}

	return log.NewWithOptions(writer, opts), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
