// Package logging provides structured logging with zap.
//
// Tools build a logger with New and pass it down explicitly. Init installs a
// process-wide logger for mains that want one; L returns it, or a no-op
// logger before Init.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // console or json
	OutputPath string // stderr, stdout or a file path; used by Init only
}

var (
	mu          sync.Mutex
	globalLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	global      = zap.NewNop()
)

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return l, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// New returns a logger writing to w. Unknown levels fall back to info.
func New(cfg Config, w io.Writer) *zap.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.New(newCore(cfg.Format, zapcore.AddSync(w), zap.NewAtomicLevelAt(level)))
}

func newCore(format string, ws zapcore.WriteSyncer, level zap.AtomicLevel) zapcore.Core {
	var enc zapcore.Encoder
	if format == "json" {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewCore(enc, ws, level)
}

// Init installs the global logger.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var ws zapcore.WriteSyncer
	switch cfg.OutputPath {
	case "", "stderr":
		ws = zapcore.Lock(os.Stderr)
	case "stdout":
		ws = zapcore.Lock(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		ws = zapcore.AddSync(f)
	}

	mu.Lock()
	defer mu.Unlock()
	globalLevel.SetLevel(level)
	global = zap.New(newCore(cfg.Format, ws, globalLevel), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Sync flushes the global logger.
func Sync() error {
	return L().Sync()
}

// SetLevel changes the global log level at runtime.
func SetLevel(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	globalLevel.SetLevel(l)
	return nil
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
