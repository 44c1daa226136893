// Package logging builds the zap logger used across webhook-notifier and
// reads back the files it writes. Log output never goes to stdout, which is
// reserved for the hook protocol.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// ErrorFileName collects error-level entries regardless of rotation.
	ErrorFileName = "errors.log"
	// SizeRotatedFileName is the active file when rotation is "size".
	SizeRotatedFileName = "webhook-notifier.log"

	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
	dateLayout = "2006-01-02"
)

// Options configures New. Zero values select the defaults.
type Options struct {
	Level     string // debug | info | warn | error
	Directory string
	Format    string // json | text
	Rotation  string // daily | size
	// Stderr receives error-level entries. Defaults to os.Stderr.
	Stderr io.Writer
	// Now picks the daily file name. Defaults to time.Now.
	Now func() time.Time
}

// New returns a logger writing to files under opts.Directory. If the
// directory cannot be created the returned logger writes errors to stderr
// only, and the error explains why.
func New(opts Options) (*zap.Logger, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	stderrCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(opts.Stderr),
		zapcore.ErrorLevel,
	)

	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return zap.New(stderrCore), fmt.Errorf("failed to create log directory %s: %w", opts.Directory, err)
	}

	mainFile := filepath.Join(opts.Directory, opts.Now().Format(dateLayout)+".log")
	if opts.Rotation == "size" {
		mainFile = filepath.Join(opts.Directory, SizeRotatedFileName)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(opts.Format), zapcore.AddSync(rotating(mainFile)), level),
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(rotating(filepath.Join(opts.Directory, ErrorFileName))),
			zapcore.ErrorLevel,
		),
		stderrCore,
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
}

func encoder(format string) zapcore.Encoder {
	if format == "text" {
		return zapcore.NewConsoleEncoder(encoderConfig())
	}
	return zapcore.NewJSONEncoder(encoderConfig())
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
