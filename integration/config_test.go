// Package integration_test tests hierarchical configuration loading and merging behavior.
// Related: internal/config/config.go
// Tags: integration, config, hierarchical, env-vars, yaml

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TestConfigSearchOrder checks which file wins when several exist.
func TestConfigSearchOrder(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		files    map[string]string
		wantURL  string
		wantFile string
	}{
		"plugin dir beats project": {
			files: map[string]string{
				"home/.claude/plugins/webhook-notifier/.webhookrc.yaml": "notifiers:\n  webhook:\n    url: https://plugin.example.com\n",
				"work/.webhookrc.yaml":                                  "notifiers:\n  webhook:\n    url: https://work.example.com\n",
			},
			wantURL:  "https://plugin.example.com",
			wantFile: "home/.claude/plugins/webhook-notifier/.webhookrc.yaml",
		},
		"project beats home": {
			files: map[string]string{
				"work/.webhookrc.json": `{"notifiers":{"webhook":{"url":"https://work.example.com"}}}`,
				"home/.webhookrc.yaml": "notifiers:\n  webhook:\n    url: https://home.example.com\n",
			},
			wantURL:  "https://work.example.com",
			wantFile: "work/.webhookrc.json",
		},
		"broken file is skipped": {
			files: map[string]string{
				"work/.webhookrc.yaml": "notifiers: [\n",
				"home/.webhookrc.yml":  "notifiers:\n  webhook:\n    url: https://home.example.com\n",
			},
			wantURL:  "https://home.example.com",
			wantFile: "home/.webhookrc.yml",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			for rel, content := range tt.files {
				writeFile(t, filepath.Join(root, rel), content)
			}

			m, err := config.Load(config.LoadOptions{
				HomeDir: filepath.Join(root, "home"),
				WorkDir: filepath.Join(root, "work"),
				SkipEnv: true,
			})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, tt.wantFile), m.Path())
			require.NotNil(t, m.Config().Notifiers.Webhook)
			assert.Equal(t, tt.wantURL, m.Config().Notifiers.Webhook.URL)
			assert.Empty(t, m.Validate())
		})
	}
}

// TestConfigEnvLayering sets process environment so it cannot run in parallel.
func TestConfigEnvLayering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "work", ".webhookrc.yaml"), `
notifiers:
  webhook:
    url: ${INTEGRATION_HOOK_URL}
    headers:
      Authorization: Bearer ${INTEGRATION_TOKEN}
`)
	t.Setenv("INTEGRATION_HOOK_URL", "https://env.example.com/hook")
	t.Setenv("INTEGRATION_TOKEN", "secret")
	t.Setenv("WEBHOOK_NOTIFIER_LOGGING__LEVEL", "debug")

	m, err := config.Load(config.LoadOptions{
		HomeDir: filepath.Join(root, "home"),
		WorkDir: filepath.Join(root, "work"),
	})
	require.NoError(t, err)

	cfg := m.Config()
	assert.Equal(t, "https://env.example.com/hook", cfg.Notifiers.Webhook.URL)
	assert.Equal(t, "Bearer secret", cfg.Notifiers.Webhook.Headers["Authorization"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Notifiers.Webhook.Enabled, "webhook defaults apply once the section exists")
	assert.Equal(t, config.DefaultWebhookTimeout, cfg.Notifiers.Webhook.Timeout)
	assert.Equal(t, filepath.Join(root, "home", ".claude", "webhook-notifier", "logs"), cfg.Logging.Directory)
	assert.Empty(t, m.Warnings())
}
