package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/ariel-frischer/webhook-notifier/internal/config"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a commented configuration file with every default spelled out.

By default the file is written to ./.webhookrc.yaml. Use --user to write
~/.claude/plugins/webhook-notifier/.webhookrc.yaml instead. An existing file
is never overwritten unless --force is given.`,
	Example: `  # Project-level config
  webhook-notifier config init

  # User-level config, replacing any existing file
  webhook-notifier config init --user --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("user", false, "Write the user-level config file")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	useUser, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	path, err := initPath(useUser)
	if err != nil {
		return err
	}

	if err := cfgpkg.WriteDefault(path, force); err != nil {
		if errors.Is(err, cfgpkg.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Created %s\n", green("✓"), path)
	fmt.Fprintln(out, "Edit notifiers.webhook.url, then run 'webhook-notifier test' to check delivery.")
	return nil
}

func initPath(useUser bool) (string, error) {
	if useUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return cfgpkg.UserConfigPath(home), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return filepath.Join(wd, cfgpkg.FileBaseName+".yaml"), nil
}
