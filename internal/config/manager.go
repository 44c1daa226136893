package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/v2"
)

// ErrKeyNotFound is returned by Manager.Get for absent paths.
var ErrKeyNotFound = errors.New("config path not found")

// Manager gives read-only access to a loaded configuration, both as a typed
// Config and by dotted path. It is safe for concurrent reads.
type Manager struct {
	k        *koanf.Koanf
	cfg      *Config
	path     string
	warnings []string
}

// NewManager wraps an already-built Config, e.g. in tests. Path lookups
// reflect cfg's JSON field names.
func NewManager(cfg *Config) (*Manager, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	k := koanf.New(".")
	flat, _ := maps.Flatten(raw, nil, ".")
	for key, value := range flat {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return &Manager{k: k, cfg: cfg}, nil
}

// Config returns the typed configuration.
func (m *Manager) Config() *Config {
	return m.cfg
}

// Path returns the file the configuration was loaded from, or "" when only
// defaults and environment were used.
func (m *Manager) Path() string {
	return m.path
}

// Warnings returns non-fatal problems found while loading.
func (m *Manager) Warnings() []string {
	return m.warnings
}

// Get returns the value at a dotted path such as "notifiers.webhook.url".
func (m *Manager) Get(path string) (interface{}, error) {
	if !m.k.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	return m.k.Get(path), nil
}

// GetSafe returns the value at path, or def when the path is absent.
func (m *Manager) GetSafe(path string, def interface{}) interface{} {
	v, err := m.Get(path)
	if err != nil {
		return def
	}
	return v
}

// All returns the merged configuration as a nested map.
func (m *Manager) All() map[string]interface{} {
	return m.k.Raw()
}

// Validate checks the configuration for the current platform.
func (m *Manager) Validate() []*ValidationError {
	return ValidateConfig(m.cfg, m.path, runtime.GOOS)
}
