// Package delivery provides the CLI commands that deliver notifications:
// hook (the hook protocol entry point) and test.
package delivery

import (
	"github.com/spf13/cobra"
)

// Register adds all delivery commands to the root command.
func Register(rootCmd *cobra.Command) {
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(testCmd)
}
