// Package config loads webhook-notifier configuration. Values are layered
// (lowest to highest): built-in defaults, the first config file found on the
// search path, then WEBHOOK_NOTIFIER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nesting levels are
// separated by a double underscore, e.g.
// WEBHOOK_NOTIFIER_NOTIFIERS__WEBHOOK__URL sets notifiers.webhook.url.
const EnvPrefix = "WEBHOOK_NOTIFIER_"

// FileBaseName is the config file name without extension.
const FileBaseName = ".webhookrc"

var fileExtensions = []string{".yaml", ".yml", ".json"}

// Config is the resolved configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging" json:"logging" yaml:"logging"`
	Events    EventsConfig    `koanf:"events" json:"events" yaml:"events"`
	Notifiers NotifiersConfig `koanf:"notifiers" json:"notifiers" yaml:"notifiers"`
	Telemetry TelemetryConfig `koanf:"telemetry" json:"telemetry" yaml:"telemetry"`
}

type LoggingConfig struct {
	Level     string `koanf:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Directory string `koanf:"directory" json:"directory" yaml:"directory" validate:"required"`
	Format    string `koanf:"format" json:"format" yaml:"format" validate:"oneof=json text"`
	Rotation  string `koanf:"rotation" json:"rotation" yaml:"rotation" validate:"oneof=daily size"`
}

type EventsConfig struct {
	Notification NotificationEventConfig `koanf:"notification" json:"notification" yaml:"notification"`
	SessionEnd   SessionEndEventConfig   `koanf:"session_end" json:"session_end" yaml:"session_end"`
}

type NotificationEventConfig struct {
	Enabled        bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
	ExtractContext bool `koanf:"extract_context" json:"extract_context" yaml:"extract_context"`
	ContextLength  int  `koanf:"context_length" json:"context_length" yaml:"context_length" validate:"min=50,max=500"`
}

type SessionEndEventConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
}

// NotifiersConfig holds one section per sink. Webhook is nil when the
// config does not mention it.
type NotifiersConfig struct {
	Webhook *WebhookConfig `koanf:"webhook" json:"webhook,omitempty" yaml:"webhook,omitempty" validate:"omitempty"`
	Desktop DesktopConfig  `koanf:"desktop" json:"desktop" yaml:"desktop"`
	NATS    NATSConfig     `koanf:"nats" json:"nats" yaml:"nats"`
}

type WebhookConfig struct {
	Enabled bool              `koanf:"enabled" json:"enabled" yaml:"enabled"`
	URL     string            `koanf:"url" json:"url" yaml:"url"`
	Timeout int               `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"min=1,max=60"`
	Retry   RetryConfig       `koanf:"retry" json:"retry" yaml:"retry"`
	Headers map[string]string `koanf:"headers" json:"headers,omitempty" yaml:"headers,omitempty"`
	Payload PayloadConfig     `koanf:"payload" json:"payload" yaml:"payload"`
}

type RetryConfig struct {
	Enabled     bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	MaxAttempts int    `koanf:"max_attempts" json:"max_attempts" yaml:"max_attempts" validate:"min=1,max=10"`
	Backoff     string `koanf:"backoff" json:"backoff" yaml:"backoff" validate:"oneof=linear exponential"`
}

// PayloadConfig controls which optional sections a payload carries.
// Exclude removes top-level keys before CustomFields are merged.
type PayloadConfig struct {
	Include      []string       `koanf:"include" json:"include" yaml:"include" validate:"dive,oneof=session_id timestamp project_info git_info context transcript_path"`
	Exclude      []string       `koanf:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`
	CustomFields map[string]any `koanf:"custom_fields" json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
}

// Includes reports whether name is on the include allow-list.
func (p PayloadConfig) Includes(name string) bool {
	for _, inc := range p.Include {
		if inc == name {
			return true
		}
	}
	return false
}

type DesktopConfig struct {
	Enabled   bool            `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Title     string          `koanf:"title" json:"title" yaml:"title"`
	Sound     string          `koanf:"sound" json:"sound" yaml:"sound"`
	Actions   []ActionConfig  `koanf:"actions" json:"actions" yaml:"actions" validate:"dive"`
	Templates TemplatesConfig `koanf:"templates" json:"templates" yaml:"templates"`
}

// ActionConfig binds a notification button label to a shell command.
type ActionConfig struct {
	Label   string `koanf:"label" json:"label" yaml:"label" validate:"required"`
	Command string `koanf:"command" json:"command" yaml:"command"`
}

// Action returns the action with the given label.
func (d DesktopConfig) Action(label string) (ActionConfig, bool) {
	for _, a := range d.Actions {
		if a.Label == label {
			return a, true
		}
	}
	return ActionConfig{}, false
}

type TemplatesConfig struct {
	Notification TemplateConfig `koanf:"notification" json:"notification" yaml:"notification"`
	SessionEnd   TemplateConfig `koanf:"session_end" json:"session_end" yaml:"session_end"`
}

// TemplateConfig holds {{variable}} templates. An empty Subtitle means the
// notification has no subtitle.
type TemplateConfig struct {
	Title    string `koanf:"title" json:"title" yaml:"title"`
	Subtitle string `koanf:"subtitle" json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Message  string `koanf:"message" json:"message" yaml:"message"`
}

type NATSConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	URL     string `koanf:"url" json:"url" yaml:"url"`
	Subject string `koanf:"subject" json:"subject" yaml:"subject"`
	Timeout int    `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"min=1,max=60"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint    string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Insecure    bool   `koanf:"insecure" json:"insecure" yaml:"insecure"`
	ServiceName string `koanf:"service_name" json:"service_name" yaml:"service_name"`
}

// LoadOptions customises Load. Zero values use the real environment.
type LoadOptions struct {
	// Path is an explicit config file. It must exist.
	Path string
	// HomeDir and WorkDir override the search path roots.
	HomeDir string
	WorkDir string
	// LookupEnv resolves ${VAR} references. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// SkipEnv disables the WEBHOOK_NOTIFIER_* layer.
	SkipEnv bool
}

// SearchPaths returns candidate config files in priority order.
func SearchPaths(homeDir, workDir string) []string {
	var dirs []string
	if homeDir != "" {
		dirs = append(dirs, filepath.Join(homeDir, ".claude", "plugins", "webhook-notifier"))
	}
	if workDir != "" {
		dirs = append(dirs, workDir)
	}
	if homeDir != "" {
		dirs = append(dirs, homeDir)
	}

	var paths []string
	for _, dir := range dirs {
		for _, ext := range fileExtensions {
			paths = append(paths, filepath.Join(dir, FileBaseName+ext))
		}
	}
	return paths
}

// UserConfigPath is where `config init --user` writes.
func UserConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ".claude", "plugins", "webhook-notifier", FileBaseName+".yaml")
}

// Load resolves configuration. A file on the search path that fails to
// parse is skipped with a warning; an explicit Path that is missing or
// invalid is an error.
func Load(opts LoadOptions) (*Manager, error) {
	opts = withDefaults(opts)
	m := &Manager{}

	user := koanf.New(".")
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", opts.Path)
		}
		if err := loadFile(user, opts.Path); err != nil {
			return nil, err
		}
		m.path = opts.Path
	} else {
		for _, p := range SearchPaths(opts.HomeDir, opts.WorkDir) {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			candidate := koanf.New(".")
			if err := loadFile(candidate, p); err != nil {
				m.warnings = append(m.warnings, fmt.Sprintf("skipping %s: %v", p, err))
				continue
			}
			user = candidate
			m.path = p
			break
		}
	}

	m.warnings = append(m.warnings, expandEnvRefs(user, opts.LookupEnv)...)

	if !opts.SkipEnv {
		if err := user.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment overrides: %w", err)
		}
	}

	if err := applyLegacyAliases(user); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	for key, value := range Defaults(user.Exists("notifiers.webhook")) {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply default %s: %w", key, err)
		}
	}
	if err := k.Merge(user); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Directory = ExpandHomePath(cfg.Logging.Directory, opts.HomeDir)

	m.k = k
	m.cfg = &cfg
	return m, nil
}

// Default returns the built-in configuration with no file or environment
// layer applied. Hook mode falls back to it when loading fails.
func Default() *Config {
	k := koanf.New(".")
	for key, value := range Defaults(false) {
		_ = k.Set(key, value)
	}
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	home, _ := os.UserHomeDir()
	cfg.Logging.Directory = ExpandHomePath(cfg.Logging.Directory, home)
	return &cfg
}

func withDefaults(opts LoadOptions) LoadOptions {
	if opts.HomeDir == "" {
		opts.HomeDir, _ = os.UserHomeDir()
	}
	if opts.WorkDir == "" {
		opts.WorkDir, _ = os.Getwd()
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	return opts
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := ValidateYAMLSyntax(path); err != nil {
			return err
		}
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: WEBHOOK_NOTIFIER_EVENTS__NOTIFICATION__CONTEXT_LENGTH ->
// events.notification.context_length
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

var envRefPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvRefs replaces ${VAR} in every string value loaded from a file,
// including strings nested in lists. Unset variables expand to "" and are
// reported as warnings.
func expandEnvRefs(k *koanf.Koanf, lookup func(string) (string, bool)) []string {
	var warnings []string
	expand := func(s string) string {
		return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
			name := envRefPattern.FindStringSubmatch(ref)[1]
			v, ok := lookup(name)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("environment variable %s is not defined", name))
				return ""
			}
			return v
		})
	}

	for _, key := range k.Keys() {
		if v, changed := expandValue(k.Get(key), expand); changed {
			_ = k.Set(key, v)
		}
	}
	return warnings
}

func expandValue(v any, expand func(string) string) (any, bool) {
	switch t := v.(type) {
	case string:
		if !envRefPattern.MatchString(t) {
			return t, false
		}
		return expand(t), true
	case []any:
		out := make([]any, len(t))
		changed := false
		for i, item := range t {
			var c bool
			out[i], c = expandValue(item, expand)
			changed = changed || c
		}
		return out, changed
	case map[string]any:
		out := make(map[string]any, len(t))
		changed := false
		for key, item := range t {
			var c bool
			out[key], c = expandValue(item, expand)
			changed = changed || c
		}
		return out, changed
	default:
		return v, false
	}
}

// applyLegacyAliases maps notifiers.macos onto notifiers.desktop when only
// the former is present.
func applyLegacyAliases(k *koanf.Koanf) error {
	if !k.Exists("notifiers.macos") {
		return nil
	}
	if !k.Exists("notifiers.desktop") {
		if err := k.MergeAt(k.Cut("notifiers.macos"), "notifiers.desktop"); err != nil {
			return fmt.Errorf("failed to apply notifiers.macos alias: %w", err)
		}
	}
	k.Delete("notifiers.macos")
	return nil
}

// ExpandHomePath expands a leading ~/ to homeDir.
func ExpandHomePath(path, homeDir string) string {
	if strings.HasPrefix(path, "~/") && homeDir != "" {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
