// Package config tests CLI configuration commands for webhook-notifier.
// Related: internal/cli/config/install.go
// Tags: config, cli, install, hooks, claude

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/claude"
	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
)

func installHarness(t *testing.T, flags map[string]string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "install"}
	cmd.Flags().Bool("user", false, "")
	cmd.Flags().String("command", claude.DefaultCommand, "")
	cmd.Flags().Bool("check", false, "")
	cmd.Flags().Bool("uninstall", false, "")
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

// TestRunInstall changes HOME so it cannot run in parallel.
func TestRunInstall(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := claude.UserPath(home)

	cmd, out := installHarness(t, map[string]string{"user": "true", "check": "true"})
	assert.Equal(t, shared.ExitValidationFailed, shared.ExitCode(runInstall(cmd, nil)))
	assert.Contains(t, out.String(), "not found")

	cmd, out = installHarness(t, map[string]string{"user": "true"})
	require.NoError(t, runInstall(cmd, nil))
	assert.Contains(t, out.String(), "Registered webhook-notifier for Notification, SessionEnd")

	cmd, out = installHarness(t, map[string]string{"user": "true"})
	require.NoError(t, runInstall(cmd, nil))
	assert.Contains(t, out.String(), "Already registered")

	cmd, out = installHarness(t, map[string]string{"user": "true", "check": "true"})
	require.NoError(t, runInstall(cmd, nil))
	assert.Contains(t, out.String(), "runs on Notification, SessionEnd")

	cmd, out = installHarness(t, map[string]string{"user": "true", "uninstall": "true"})
	require.NoError(t, runInstall(cmd, nil))
	assert.Contains(t, out.String(), "Removed webhook-notifier")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	cmd, out = installHarness(t, map[string]string{"user": "true", "uninstall": "true"})
	require.NoError(t, runInstall(cmd, nil))
	assert.Contains(t, out.String(), "is not registered")
}

func TestRunInstall_CustomCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	bin := filepath.Join(home, "bin", "webhook-notifier")
	cmd, _ := installHarness(t, map[string]string{"user": "true", "command": bin})
	require.NoError(t, runInstall(cmd, nil))

	s, err := claude.Load(claude.UserPath(home))
	require.NoError(t, err)
	assert.True(t, s.HasHook("SessionEnd", bin))
	assert.False(t, s.HasHook("SessionEnd", claude.DefaultCommand))
}

func TestRunInstall_EmptyCommand(t *testing.T) {
	t.Parallel()

	cmd, out := installHarness(t, map[string]string{"command": "  "})
	assert.Equal(t, shared.ExitInvalidArguments, shared.ExitCode(runInstall(cmd, nil)))
	assert.Contains(t, out.String(), "--command must not be empty")
}

func TestInstallCmd_Structure(t *testing.T) {
	assert.Equal(t, "install", installCmd.Use)
	assert.Equal(t, shared.GroupConfiguration, installCmd.GroupID)
	for _, flag := range []string{"user", "command", "check", "uninstall"} {
		assert.NotNil(t, installCmd.Flags().Lookup(flag), flag)
	}
}
