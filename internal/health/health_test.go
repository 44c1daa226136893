// Package health_test tests the doctor checks.
// Related: internal/health/health.go
// Tags: health, doctor, validation

package health

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/claude"
	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/git"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
)

type fakeSender struct{ available bool }

func (f fakeSender) Available() bool { return f.available }

func (f fakeSender) Notify(context.Context, notify.Alert) (string, error) { return "", nil }

type fakeGit struct{ info *git.Info }

func (f fakeGit) Extract(string) *git.Info { return f.info }

func loadManager(t *testing.T, yaml string) *config.Manager {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(work, ".webhookrc.yaml"), []byte(yaml), 0o644))
	}
	m, err := config.Load(config.LoadOptions{HomeDir: home, WorkDir: work, SkipEnv: true})
	require.NoError(t, err)
	return m
}

func TestCheckConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml        string
		wantPassed  bool
		wantWarning bool
		wantMessage string
	}{
		"defaults": {
			wantPassed:  true,
			wantMessage: "loaded built-in defaults",
		},
		"valid file": {
			yaml:        "notifiers:\n  webhook:\n    url: https://example.com/hook\n",
			wantPassed:  true,
			wantMessage: ".webhookrc.yaml",
		},
		"invalid url": {
			yaml:        "notifiers:\n  webhook:\n    url: not-a-url\n",
			wantMessage: "notifiers.webhook.url",
		},
		"undefined env reference": {
			yaml:        "notifiers:\n  webhook:\n    enabled: false\n    url: ${WEBHOOK_NOTIFIER_TEST_UNSET_VAR}\n",
			wantWarning: true,
			wantMessage: "WEBHOOK_NOTIFIER_TEST_UNSET_VAR",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := CheckConfig(loadManager(t, tt.yaml))
			assert.Equal(t, "Configuration", got.Name)
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, tt.wantWarning, got.Warning)
			assert.Contains(t, got.Message, tt.wantMessage)
		})
	}
}

func TestCheckNotifiers(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	got := CheckNotifiers(cfg)
	assert.False(t, got.Passed)
	assert.True(t, got.Warning)

	cfg.Notifiers.Webhook = &config.WebhookConfig{Enabled: true}
	cfg.Notifiers.NATS.Enabled = true
	got = CheckNotifiers(cfg)
	assert.True(t, got.Passed)
	assert.Equal(t, "enabled: webhook, nats", got.Message)
}

func TestCheckDesktop(t *testing.T) {
	t.Parallel()

	assert.True(t, CheckDesktop("darwin", fakeSender{available: true}).Passed)

	got := CheckDesktop("linux", fakeSender{})
	assert.False(t, got.Passed)
	assert.False(t, got.Warning)
	assert.Contains(t, got.Message, "linux")
}

func TestCheckLogDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	got := CheckLogDirectory(dir)
	assert.True(t, got.Passed)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file should be removed")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	got = CheckLogDirectory(filepath.Join(blocker, "logs"))
	assert.False(t, got.Passed)
	assert.Contains(t, got.Message, "is not writable")
}

func TestCheckGit(t *testing.T) {
	t.Parallel()

	branch, commit := "main", "abc1234"
	tests := map[string]struct {
		info        *git.Info
		wantPassed  bool
		wantMessage string
	}{
		"repository":       {info: &git.Info{Branch: &branch, Commit: &commit}, wantPassed: true, wantMessage: "branch main, commit abc1234"},
		"unborn detached":  {info: &git.Info{}, wantPassed: true, wantMessage: "repository found"},
		"not a repository": {wantMessage: "is not inside a git repository"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := CheckGit(fakeGit{info: tt.info}, "/work")
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, !tt.wantPassed, got.Warning)
			assert.Contains(t, got.Message, tt.wantMessage)
		})
	}
}

func TestCheckHooks(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := claude.ProjectPath(t.TempDir())
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	entry := `[{"hooks":[{"type":"command","command":"webhook-notifier"}]}]`

	tests := map[string]struct {
		content     []string
		wantPassed  bool
		wantMessage string
	}{
		"no files": {
			wantMessage: "not registered",
		},
		"registered in second file": {
			content:     []string{`{}`, `{"hooks":{"Notification":` + entry + `,"SessionEnd":` + entry + `}}`},
			wantPassed:  true,
			wantMessage: "runs on Notification, SessionEnd",
		},
		"partial": {
			content:     []string{`{"hooks":{"Notification":` + entry + `}}`},
			wantMessage: "missing for SessionEnd",
		},
		"malformed": {
			content:     []string{`{`},
			wantMessage: "loading claude settings",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			paths := []string{claude.UserPath(t.TempDir())}
			for _, c := range tt.content {
				paths = append(paths, write(t, c))
			}
			got := CheckHooks(paths, claude.DefaultCommand)
			assert.Equal(t, "Claude hooks", got.Name)
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, !tt.wantPassed, got.Warning)
			assert.Contains(t, got.Message, tt.wantMessage)
		})
	}
}

func TestRunHealthChecks(t *testing.T) {
	t.Parallel()

	m := loadManager(t, "notifiers:\n  desktop:\n    enabled: true\n")
	report := RunHealthChecks(Options{
		Manager: m,
		GOOS:    "linux",
		Sender:  fakeSender{},
		Git:     fakeGit{},
		WorkDir: "/work",
	})

	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Configuration", "Notifiers", "Desktop notifications", "Log directory", "Git"}, names)
	assert.False(t, report.Passed, "missing desktop tool fails the report")

	report = RunHealthChecks(Options{Manager: loadManager(t, ""), GOOS: "linux", Sender: fakeSender{}})
	assert.True(t, report.Passed, "warnings alone do not fail the report")
	assert.Len(t, report.Checks, 3)
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		report   *HealthReport
		expected []string
	}{
		"All checks pass": {
			report: &HealthReport{
				Checks: []CheckResult{
					{Name: "Configuration", Passed: true, Message: "loaded built-in defaults"},
					{Name: "Git", Passed: true, Message: "branch main"},
				},
				Passed: true,
			},
			expected: []string{
				"✓ Configuration: loaded built-in defaults",
				"✓ Git: branch main",
			},
		},
		"Warning and failure": {
			report: &HealthReport{
				Checks: []CheckResult{
					{Name: "Notifiers", Warning: true, Message: "no notifiers are enabled"},
					{Name: "Log directory", Message: "/x is not writable"},
				},
				Passed: false,
			},
			expected: []string{
				"! Notifiers: no notifiers are enabled",
				"✗ Log directory: /x is not writable",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			output := FormatReport(tt.report)
			for _, expected := range tt.expected {
				assert.Contains(t, output, expected, "Output should contain: %s", expected)
			}
			assert.Equal(t, len(tt.report.Checks), strings.Count(output, "\n"))
		})
	}
}
