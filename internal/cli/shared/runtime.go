package shared

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/logging"
	"github.com/ariel-frischer/webhook-notifier/internal/telemetry"
)

// ConfigFlag is the persistent flag naming an explicit config file.
const ConfigFlag = "config"

const telemetryFlushTimeout = 5 * time.Second

// LoadOptions returns config load options for cmd, honouring --config.
func LoadOptions(cmd *cobra.Command) config.LoadOptions {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	return config.LoadOptions{Path: path}
}

// LoadConfig loads configuration for cmd.
func LoadConfig(cmd *cobra.Command) (*config.Manager, error) {
	return config.Load(LoadOptions(cmd))
}

// NewLogger builds the file logger described by cfg. Errors go to cmd's
// stderr. If the log directory is unusable the logger still works and the
// problem is reported through it.
func NewLogger(cmd *cobra.Command, cfg config.LoggingConfig) *zap.Logger {
	logger, err := logging.New(logging.Options{
		Level:     cfg.Level,
		Directory: cfg.Directory,
		Format:    cfg.Format,
		Rotation:  cfg.Rotation,
		Stderr:    cmd.ErrOrStderr(),
	})
	if err != nil {
		logger.Error("file logging unavailable", zap.Error(err))
	}
	return logger
}

// NewRecorder builds the telemetry recorder for cfg, falling back to a
// no-op recorder when the exporter cannot be created.
func NewRecorder(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) telemetry.Recorder {
	rec, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.Enabled,
		Endpoint:    cfg.Endpoint,
		Insecure:    cfg.Insecure,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
		return telemetry.Nop()
	}
	return rec
}

// CloseRecorder flushes rec with a bounded timeout.
func CloseRecorder(rec telemetry.Recorder, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
	defer cancel()
	if err := rec.Close(ctx); err != nil {
		logger.Warn("failed to flush telemetry", zap.Error(err))
	}
}
