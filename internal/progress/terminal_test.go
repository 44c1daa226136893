// Package progress_test tests terminal capability detection with environment variable overrides.
// Related: internal/progress/terminal.go
// Tags: progress, terminal, capabilities, env-vars, unicode, colors
package progress_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/progress"
)

func TestDetectTerminalCapabilities_NotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	caps := progress.DetectTerminalCapabilities(f)
	assert.Equal(t, progress.TerminalCapabilities{}, caps)
	assert.Equal(t, progress.TerminalCapabilities{}, progress.DetectTerminalCapabilities(nil))
}

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		caps progress.TerminalCapabilities
		want progress.ProgressSymbols
	}{
		"unicode": {
			caps: progress.TerminalCapabilities{SupportsUnicode: true},
			want: progress.ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14},
		},
		"ascii": {
			caps: progress.TerminalCapabilities{},
			want: progress.ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, progress.SelectSymbols(tt.caps))
		})
	}
}
