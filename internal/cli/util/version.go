package util

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/build"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for webhook-notifier",
	Example: `  # Show version info
  webhook-notifier version

  # Plain output (for scripts)
  webhook-notifier version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		if plain {
			printPlainVersion(cmd.OutOrStdout())
		} else {
			printPrettyVersion(cmd.OutOrStdout())
		}
	},
}

func init() {
	versionCmd.GroupID = shared.GroupDiagnostics
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer) {
	fmt.Fprintf(out, "webhook-notifier %s\n", build.Version)
	fmt.Fprintf(out, "commit: %s\n", build.Commit)
	fmt.Fprintf(out, "built: %s\n", build.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printPrettyVersion(out io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "%s %s\n", cyan("webhook-notifier"), build.Version)
	info := []struct {
		label string
		value string
	}{
		{"Commit", truncateCommit(build.Commit)},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
		{"User-Agent", build.UserAgent()},
	}
	for _, item := range info {
		fmt.Fprintf(out, "  %s %s\n", dim(fmt.Sprintf("%-10s", item.label)), item.value)
	}
}

// truncateCommit shortens a commit hash to 7 characters
func truncateCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
