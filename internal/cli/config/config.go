package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/webhook-notifier/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage webhook-notifier configuration",
	Long: `Manage webhook-notifier configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (WEBHOOK_NOTIFIER_*, "__" separates levels)
  2. The first config file found, in this order:
       ~/.claude/plugins/webhook-notifier/.webhookrc.{yaml,yml,json}
       ./.webhookrc.{yaml,yml,json}
       ~/.webhookrc.{yaml,yml,json}
  3. Built-in defaults

String values may reference environment variables as ${NAME}.`,
	Example: `  # Show current configuration
  webhook-notifier config show

  # Write a starter config in the current directory
  webhook-notifier config init

  # Check the config for errors
  webhook-notifier config validate`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current effective configuration",
	Long: `Display the current effective configuration values.

Shows the merged result of defaults, the config file, and environment
variables. Use --json for JSON output.`,
	Example: `  # Show configuration in YAML format (default)
  webhook-notifier config show

  # Show configuration in JSON format
  webhook-notifier config show --json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration and report every problem found.

Exits non-zero when the configuration is invalid. Load warnings such as
undefined environment references are reported but do not fail validation.`,
	Example: `  webhook-notifier config validate`,
	Args:    cobra.NoArgs,
	RunE:    runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show which config file is in use and where files are searched",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.GroupID = shared.GroupConfiguration

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	useJSON, _ := cmd.Flags().GetBool("json")

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if useJSON {
		data, err := json.MarshalIndent(m.Config(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize config: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "# Configuration source: %s\n\n", sourceOf(m))
	data, err := yaml.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if path, _ := cmd.Flags().GetString(shared.ConfigFlag); path != "" {
		if err := cfgpkg.ValidateYAMLSyntax(path); err != nil {
			fmt.Fprintf(out, "%s %v\n", red("✗"), err)
			return shared.NewExitError(shared.ExitValidationFailed)
		}
	}

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("✗"), err)
		return shared.NewExitError(shared.ExitValidationFailed)
	}

	for _, w := range m.Warnings() {
		fmt.Fprintf(out, "%s %s\n", yellow("!"), w)
	}
	errs := m.Validate()
	for _, e := range errs {
		fmt.Fprintf(out, "%s %s\n", red("✗"), e.Error())
	}
	if len(errs) > 0 {
		fmt.Fprintf(out, "\n%d error(s) found\n", len(errs))
		return shared.NewExitError(shared.ExitValidationFailed)
	}

	fmt.Fprintf(out, "%s Configuration is valid (%s)\n", green("✓"), sourceOf(m))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	fmt.Fprintf(out, "In use: %s\n", sourceOf(m))

	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	printSearchPaths(out, cfgpkg.SearchPaths(home, wd), m.Path())
	return nil
}

func printSearchPaths(out io.Writer, paths []string, active string) {
	fmt.Fprintln(out, "Search order:")
	for _, p := range paths {
		marker := " "
		if p == active {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, p)
	}
}

func sourceOf(m *cfgpkg.Manager) string {
	if m.Path() == "" {
		return "built-in defaults"
	}
	return m.Path()
}
