// Package config tests CLI configuration commands for webhook-notifier.
// Related: internal/cli/config/doctor.go
// Tags: config, cli, doctor, health

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	"github.com/ariel-frischer/webhook-notifier/internal/testutil"
)

func TestDoctorCmd_Structure(t *testing.T) {
	assert.Equal(t, "doctor", doctorCmd.Use)
	assert.NotEmpty(t, doctorCmd.Short)
	assert.NotEmpty(t, doctorCmd.Long)
	assert.NotEmpty(t, doctorCmd.Example)
	assert.Contains(t, doctorCmd.Aliases, "doc", "Should have 'doc' alias")
	assert.Equal(t, shared.GroupDiagnostics, doctorCmd.GroupID)
}

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content      string
		wantExit     int
		wantContains []string
	}{
		"healthy with warnings": {
			content:      "",
			wantContains: []string{"Configuration: loaded", "Notifiers: no notifiers are enabled", "Log directory:"},
		},
		"invalid config fails": {
			content:      "notifiers:\n  webhook:\n    url: ftp://x\n",
			wantExit:     shared.ExitValidationFailed,
			wantContains: []string{"notifiers.webhook.url"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cmd, out, _ := harness(t, "")
			require.NoError(t, cmd.Flags().Set(shared.ConfigFlag, testutil.WriteConfig(t, tt.content)))
			err := runDoctor(cmd, nil)
			assert.Equal(t, tt.wantExit, shared.ExitCode(err))
			for _, want := range tt.wantContains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRunDoctor_MissingConfigFile(t *testing.T) {
	t.Parallel()

	cmd, out, _ := harness(t, "")
	require.NoError(t, cmd.Flags().Set(shared.ConfigFlag, filepath.Join(t.TempDir(), "missing.yaml")))

	err := runDoctor(cmd, nil)
	assert.Equal(t, shared.ExitValidationFailed, shared.ExitCode(err))
	assert.Contains(t, out.String(), "config file not found")
}

func TestColorize_PlainWhenColorDisabled(t *testing.T) {
	report := "✓ Git: branch main\n! Notifiers: none\n✗ Log directory: denied\n"
	assert.Equal(t, report, colorize(report))
}
