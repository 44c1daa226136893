package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/claude"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register webhook-notifier as a Claude Code hook",
	Long: `Register webhook-notifier for the Notification and SessionEnd hook events
in a Claude Code settings file.

By default ./.claude/settings.json is updated. Use --user to update
~/.claude/settings.json instead. Existing settings and other hooks are
preserved, and running install twice changes nothing.

Use --check to report the registration without writing, and --uninstall to
remove the entries again.`,
	Example: `  # Register for this project
  webhook-notifier install

  # Register for every project
  webhook-notifier install --user

  # Use an absolute binary path as the hook command
  webhook-notifier install --command /usr/local/bin/webhook-notifier

  # Remove the hooks
  webhook-notifier install --uninstall`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.GroupID = shared.GroupConfiguration

	installCmd.Flags().Bool("user", false, "Update the user-level Claude settings file")
	installCmd.Flags().String("command", claude.DefaultCommand, "Hook command to register")
	installCmd.Flags().Bool("check", false, "Report the registration without changing anything")
	installCmd.Flags().Bool("uninstall", false, "Remove the hook entries")
	installCmd.MarkFlagsMutuallyExclusive("check", "uninstall")
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	useUser, _ := cmd.Flags().GetBool("user")
	command, _ := cmd.Flags().GetString("command")
	check, _ := cmd.Flags().GetBool("check")
	uninstall, _ := cmd.Flags().GetBool("uninstall")

	command = strings.TrimSpace(command)
	if command == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: --command must not be empty")
		return shared.NewExitError(shared.ExitInvalidArguments)
	}

	path, err := settingsPath(useUser)
	if err != nil {
		return err
	}
	settings, err := claude.Load(path)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	switch {
	case check:
		result := settings.Check(command)
		if result.Status != claude.StatusConfigured {
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(out, "%s %s\n", red("✗"), result.Message)
			return shared.NewExitError(shared.ExitValidationFailed)
		}
		fmt.Fprintf(out, "%s %s\n", green("✓"), result.Message)
		return nil

	case uninstall:
		removed := settings.RemoveHooks(claude.HookEvents, command)
		if len(removed) == 0 {
			fmt.Fprintf(out, "%s is not registered in %s\n", command, path)
			return nil
		}
		if err := settings.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Removed %s from %s in %s\n", green("✓"), command, strings.Join(removed, ", "), path)
		return nil
	}

	added := settings.AddHooks(claude.HookEvents, command)
	if len(added) == 0 {
		fmt.Fprintf(out, "%s Already registered in %s\n", green("✓"), path)
		return nil
	}
	if err := settings.Save(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Registered %s for %s in %s\n", green("✓"), command, strings.Join(added, ", "), path)
	fmt.Fprintln(out, "Run 'webhook-notifier test' to check delivery.")
	return nil
}

func settingsPath(useUser bool) (string, error) {
	if useUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return claude.UserPath(home), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return claude.ProjectPath(wd), nil
}
