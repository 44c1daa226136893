// Package testutil provides test utilities and helpers for webhook-notifier tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ConfigFileName is the file name WriteConfig uses.
const ConfigFileName = ".webhookrc.yaml"

// WriteConfig writes a config file into a fresh temp directory and returns
// its path. Logging is pointed at a logs directory beside the file so tests
// never write to the real home directory.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	full := "logging:\n  directory: " + filepath.Join(dir, "logs") + "\n" + content
	WriteFile(t, path, full)
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
