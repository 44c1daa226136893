package delivery

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/lifecycle"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle one hook event read from stdin",
	Long: `Read a single hook event as JSON from stdin, dispatch it to every enabled
notifier, and write the hook response as JSON to stdout.

This is what runs when webhook-notifier is invoked with no arguments and
stdin is not a terminal. The response always allows the session to continue.
The exit code is non-zero only when stdin is empty or not valid JSON.`,
	Example: `  # Register in .claude/settings.json
  {"hooks": {"Notification": [{"hooks": [{"type": "command", "command": "webhook-notifier hook"}]}]}}

  # Replay an event by hand
  echo '{"session_id":"abc","hook_event_name":"Notification","message":"Waiting"}' | webhook-notifier hook`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunHook(cmd)
	},
}

func init() {
	hookCmd.GroupID = shared.GroupDelivery
}

// RunHook reads one hook input from cmd's stdin and writes exactly one hook
// output to its stdout. Configuration problems are logged, never fatal.
func RunHook(cmd *cobra.Command, opts ...lifecycle.Option) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "webhook-notifier: failed to read stdin: %v\n", err)
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	in, err := hook.Parse(data)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "webhook-notifier: %v\n", err)
		return shared.NewExitError(shared.ExitValidationFailed)
	}

	m, loadErr := shared.LoadConfig(cmd)
	cfg := config.Default()
	if loadErr == nil {
		cfg = m.Config()
	}
	logger := shared.NewLogger(cmd, cfg.Logging)
	defer func() { _ = logger.Sync() }()
	if loadErr != nil {
		logger.Error("failed to load configuration, using defaults", zap.Error(loadErr))
	} else {
		logConfigProblems(logger, m)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rec := shared.NewRecorder(ctx, cfg.Telemetry, logger)
	defer shared.CloseRecorder(rec, logger)

	handler := lifecycle.NewHandler(cfg, logger, append([]lifecycle.Option{lifecycle.WithRecorder(rec)}, opts...)...)
	out := handler.Handle(ctx, in)
	if err := out.Write(cmd.OutOrStdout()); err != nil {
		logger.Error("failed to write hook output", zap.Error(err))
	}
	return nil
}

func logConfigProblems(logger *zap.Logger, m *config.Manager) {
	for _, w := range m.Warnings() {
		logger.Warn("configuration warning", zap.String("warning", w))
	}
	for _, e := range m.Validate() {
		logger.Error("invalid configuration", zap.Error(e))
	}
}
