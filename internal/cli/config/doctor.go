package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/claude"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/git"
	"github.com/ariel-frischer/webhook-notifier/internal/health"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"doc"},
	Short:   "Run health checks for webhook-notifier (doc)",
	Long: `Run health checks to verify that webhook-notifier can deliver notifications.

This command checks:
  - Configuration loads and validates
  - At least one notifier is enabled
  - A desktop notification tool is installed (when desktop is enabled)
  - The log directory is writable
  - Git metadata is available for the current directory
  - Claude Code settings register the notifier hook

Each check displays a checkmark if passed, "!" for a warning, or an X with
an error message if failed. Warnings do not cause a non-zero exit.`,
	Example: `  # Check the setup
  webhook-notifier doctor

  # Check before sending a test notification
  webhook-notifier doctor && webhook-notifier test`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.GroupID = shared.GroupDiagnostics
}

func runDoctor(cmd *cobra.Command, args []string) error {
	m, err := shared.LoadConfig(cmd)
	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration: %v\n", red("✗"), err)
		return shared.NewExitError(shared.ExitValidationFailed)
	}

	wd, _ := os.Getwd()
	hookSettings := []string{claude.ProjectPath(wd)}
	if home, err := os.UserHomeDir(); err == nil {
		hookSettings = append(hookSettings, claude.UserPath(home))
	}
	report := health.RunHealthChecks(health.Options{
		Manager:      m,
		GOOS:         runtime.GOOS,
		Git:          git.NewExtractor(nil),
		WorkDir:      wd,
		HookSettings: hookSettings,
	})

	fmt.Fprint(cmd.OutOrStdout(), colorize(health.FormatReport(report)))

	if !report.Passed {
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	return nil
}

// colorize tints the status mark at the start of each report line.
func colorize(report string) string {
	marks := map[string]*color.Color{
		"✓": color.New(color.FgGreen),
		"!": color.New(color.FgYellow),
		"✗": color.New(color.FgRed),
	}
	lines := strings.SplitAfter(report, "\n")
	for i, line := range lines {
		for mark, c := range marks {
			if strings.HasPrefix(line, mark+" ") {
				lines[i] = c.Sprint(mark) + strings.TrimPrefix(line, mark)
				break
			}
		}
	}
	return strings.Join(lines, "")
}
