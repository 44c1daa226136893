package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
	"github.com/ariel-frischer/webhook-notifier/internal/progress"
)

// AllNotifiers selects every notifier in the test command.
const AllNotifiers = "all"

// legacyDesktopName is the desktop notifier's name in older configs.
const legacyDesktopName = "macos"

var errNotEnabled = errors.New("not enabled in configuration or not supported on this platform")

const (
	testMessage     = "Test notification from webhook-notifier"
	testLastMessage = "This is a test notification. If you can read this, delivery works."
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through the configured notifiers",
	Long: `Validate the configuration and send a synthetic Notification event to each
enabled notifier, reporting the outcome of every delivery.

Unlike hook mode, an invalid configuration is a hard failure here.
Exit codes: 0 all deliveries succeeded, 1 invalid configuration or no
enabled notifier, 2 at least one delivery failed, 3 unknown notifier.`,
	Example: `  # Test every enabled notifier
  webhook-notifier test

  # Test only the webhook
  webhook-notifier test -n webhook`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("notifier")
		return RunTest(cmd, name, notify.Options{})
	},
}

func init() {
	testCmd.GroupID = shared.GroupDelivery
	testCmd.Flags().StringP("notifier", "n", AllNotifiers, "Notifier to test (webhook, desktop or macos, nats, all)")
}

// RunTest sends a test event to the notifier called name, or to all of
// them when name is "all".
func RunTest(cmd *cobra.Command, name string, opts notify.Options) error {
	stderr := cmd.ErrOrStderr()
	red := color.New(color.FgRed).SprintFunc()

	if name == legacyDesktopName {
		name = notify.DesktopName
	}
	if !knownNotifier(name) {
		fmt.Fprintf(stderr, "%s unknown notifier %q (want webhook, desktop, nats or all)\n", red("Error:"), name)
		return shared.NewExitError(shared.ExitInvalidArguments)
	}

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if errs := m.Validate(); len(errs) > 0 {
		fmt.Fprintln(stderr, red("Configuration is invalid:"))
		for _, e := range errs {
			fmt.Fprintf(stderr, "  %s\n", e.Error())
		}
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	cfg := m.Config()

	logger := shared.NewLogger(cmd, cfg.Logging)
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ev := TestEvent(workDir())

	var caps progress.TerminalCapabilities
	if f, ok := stderr.(*os.File); ok {
		caps = progress.DetectTerminalCapabilities(f)
	}
	display := progress.NewDisplay(caps, stderr)

	var total, succeeded int
	for _, n := range notify.All(cfg, logger, opts) {
		if name != AllNotifiers && n.Name() != name {
			continue
		}
		if !n.IsEnabled() {
			if name == AllNotifiers {
				display.Skip(n.Name() + ": disabled")
				continue
			}
			total++
			display.Fail(n.Name(), errNotEnabled)
			continue
		}

		total++
		display.Start(fmt.Sprintf("Sending %s test notification...", n.Name()))
		res := n.Send(ctx, ev)
		if !res.Success {
			display.Fail(n.Name(), res.Err)
			continue
		}
		succeeded++
		display.Succeed(describeSuccess(res))
	}

	if total == 0 {
		fmt.Fprintln(stderr, red("No notifiers are enabled."))
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d test notifications succeeded\n", succeeded, total)
	if succeeded < total {
		return shared.NewExitError(shared.ExitDeliveryFailed)
	}
	return nil
}

// TestEvent is the synthetic notification sent by the test command.
func TestEvent(cwd string) hook.Event {
	in := hook.Input{
		SessionID:        "test-" + uuid.NewString(),
		Cwd:              cwd,
		HookEventName:    hook.EventNotification,
		Message:          testMessage,
		NotificationType: hook.NotificationWaitingForInput,
	}
	return hook.NewNotificationEvent(in, &hook.Context{
		LastMessage: testLastMessage,
		MessageType: hook.MessageInfo,
	})
}

func knownNotifier(name string) bool {
	switch name {
	case AllNotifiers, notify.WebhookName, notify.DesktopName, notify.NATSName:
		return true
	}
	return false
}

func describeSuccess(res notify.Result) string {
	var b strings.Builder
	b.WriteString(res.Notifier)
	if res.Response != nil {
		fmt.Fprintf(&b, ": HTTP %d %s", res.Response.Status, res.Response.StatusText)
	}
	if res.Attempts > 1 {
		fmt.Fprintf(&b, " after %d attempts", res.Attempts)
	}
	return b.String()
}

func workDir() string {
	dir, _ := os.Getwd()
	return dir
}
