// Package cli provides Cobra-based CLI commands for webhook-notifier.
// Invoked with no arguments and a non-terminal stdin it runs in hook mode;
// otherwise it offers delivery testing (test), configuration management
// (config, install), and diagnostics (doctor, logs, version).
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/config"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/delivery"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/util"
)

// Command group IDs for organizing help output (re-exported from shared)
const (
	GroupDelivery      = shared.GroupDelivery
	GroupConfiguration = shared.GroupConfiguration
	GroupDiagnostics   = shared.GroupDiagnostics
)

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var rootCmd = &cobra.Command{
	Use:   "webhook-notifier",
	Short: "Deliver Claude Code hook events to webhooks, the desktop, and NATS",
	Long: `webhook-notifier turns Claude Code hook events into notifications.

Register it as a Notification and SessionEnd hook. Each event is sent to
every enabled notifier at once: an HTTP webhook, a native desktop
notification, or a NATS subject. Delivery never blocks the session: the hook
response always lets Claude Code continue.`,
	Example: `  # Hook mode (what Claude Code runs)
  echo '{"session_id":"abc","hook_event_name":"Notification","message":"Waiting"}' | webhook-notifier

  # Create a config file, register the hook, and check delivery
  webhook-notifier config init
  webhook-notifier install
  webhook-notifier test

  # Diagnose problems
  webhook-notifier doctor
  webhook-notifier logs -l warn`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !stdinIsTerminal() {
			return delivery.RunHook(cmd)
		}
		return cmd.Help()
	},
}

// Execute runs the root command. Errors that carry only an exit code have
// already been reported; anything else is printed to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !shared.IsExitError(err) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
	}
	return err
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: GroupDelivery, Title: "Delivery:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupDiagnostics, Title: "Diagnostics:"})

	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	rootCmd.PersistentFlags().StringP(shared.ConfigFlag, "c", "", "Path to config file (default: search .webhookrc.{yaml,yml,json})")

	delivery.Register(rootCmd)
	config.Register(rootCmd)
	util.Register(rootCmd)
}
