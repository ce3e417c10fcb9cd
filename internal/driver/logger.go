package driver

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"abiforge/internal/collect"
	"abiforge/internal/manifest"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the driver package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the driver package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// InstallLogger hands l to every pass package.
func InstallLogger(l *zap.Logger) {
	SetLogger(l)
	collect.SetLogger(l.Named("collect"))
	manifest.SetLogger(l.Named("manifest"))
}

// LogOptions configures NewLogger.
type LogOptions struct {
	Level string
	// Console receives human-readable output; nil means stderr.
	Console io.Writer
	// File, when set, additionally writes JSON lines to a rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger builds the CLI logger: a console core and an optional rotated
// JSON file core.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level),
	}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
