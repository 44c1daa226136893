package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SettingsStatus represents the state of hook registration.
type SettingsStatus int

const (
	// StatusConfigured indicates every required event runs the command.
	StatusConfigured SettingsStatus = iota
	// StatusMissing indicates the settings file does not exist.
	StatusMissing
	// StatusPartial indicates some required events lack the command.
	StatusPartial
	// StatusNotRegistered indicates no required event runs the command.
	StatusNotRegistered
)

// String returns a human-readable representation of the status.
func (s SettingsStatus) String() string {
	switch s {
	case StatusConfigured:
		return "Configured"
	case StatusMissing:
		return "Missing"
	case StatusPartial:
		return "Partial"
	case StatusNotRegistered:
		return "NotRegistered"
	default:
		return "Unknown"
	}
}

// SettingsCheckResult contains the result of checking hook registration.
type SettingsCheckResult struct {
	Status   SettingsStatus
	Message  string
	FilePath string
	// Missing lists the required events without the command.
	Missing []string
}

// DefaultCommand is the hook command registered when none is given.
const DefaultCommand = "webhook-notifier"

// HookEvents are the Claude Code hook events the notifier handles.
var HookEvents = []string{"Notification", "SessionEnd"}

// SettingsFileName is the name of the shared Claude settings file.
const SettingsFileName = "settings.json"

// SettingsDir is the directory containing Claude settings.
const SettingsDir = ".claude"

// ProjectPath returns the project-level settings path under dir.
func ProjectPath(dir string) string {
	return filepath.Join(dir, SettingsDir, SettingsFileName)
}

// UserPath returns the user-level settings path under home.
func UserPath(home string) string {
	return filepath.Join(home, SettingsDir, SettingsFileName)
}

// Settings represents a Claude settings file with flexible JSON structure.
// Unknown fields survive a load and save round trip.
type Settings struct {
	data     map[string]any
	filePath string
}

// Load reads and parses the settings file at path. A missing or empty file
// yields empty settings. Malformed JSON is an error.
func Load(path string) (*Settings, error) {
	s := &Settings{
		data:     make(map[string]any),
		filePath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	return s, nil
}

// FilePath returns the path to the settings file.
func (s *Settings) FilePath() string {
	return s.filePath
}

// Exists returns true if the settings file exists on disk.
func (s *Settings) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

func (s *Settings) hooks(create bool) map[string]any {
	hooks, ok := s.data["hooks"].(map[string]any)
	if !ok && create {
		hooks = make(map[string]any)
		s.data["hooks"] = hooks
	}
	return hooks
}

// matchers returns the matcher groups registered for event.
func (s *Settings) matchers(event string) []any {
	groups, _ := s.hooks(false)[event].([]any)
	return groups
}

func groupCommands(group any) []any {
	m, ok := group.(map[string]any)
	if !ok {
		return nil
	}
	cmds, _ := m["hooks"].([]any)
	return cmds
}

func isCommand(entry any, command string) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	if t, _ := m["type"].(string); t != "command" {
		return false
	}
	c, _ := m["command"].(string)
	return strings.TrimSpace(c) == command
}

// HasHook reports whether command runs for event under any matcher.
func (s *Settings) HasHook(event, command string) bool {
	for _, group := range s.matchers(event) {
		for _, entry := range groupCommands(group) {
			if isCommand(entry, command) {
				return true
			}
		}
	}
	return false
}

// AddHook registers command for event in a new catch-all matcher group.
// Returns false when the command was already registered.
func (s *Settings) AddHook(event, command string) bool {
	if s.HasHook(event, command) {
		return false
	}

	group := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": command},
		},
	}
	s.hooks(true)[event] = append(s.matchers(event), group)
	return true
}

// AddHooks registers command for every event and returns the events that
// were changed.
func (s *Settings) AddHooks(events []string, command string) []string {
	var added []string
	for _, event := range events {
		if s.AddHook(event, command) {
			added = append(added, event)
		}
	}
	return added
}

// RemoveHook drops every entry running command for event. Matcher groups
// left empty are removed, as is the event key once no groups remain.
// Returns false when nothing was removed.
func (s *Settings) RemoveHook(event, command string) bool {
	groups := s.matchers(event)
	if len(groups) == 0 {
		return false
	}

	removed := false
	kept := make([]any, 0, len(groups))
	for _, group := range groups {
		cmds := groupCommands(group)
		remaining := make([]any, 0, len(cmds))
		for _, entry := range cmds {
			if isCommand(entry, command) {
				removed = true
				continue
			}
			remaining = append(remaining, entry)
		}
		if len(remaining) == 0 && len(cmds) > 0 {
			continue
		}
		if m, ok := group.(map[string]any); ok && len(cmds) > 0 {
			m["hooks"] = remaining
		}
		kept = append(kept, group)
	}

	hooks := s.hooks(false)
	if len(kept) == 0 {
		delete(hooks, event)
	} else {
		hooks[event] = kept
	}
	if len(hooks) == 0 {
		delete(s.data, "hooks")
	}
	return removed
}

// RemoveHooks unregisters command from every event and returns the events
// that were changed.
func (s *Settings) RemoveHooks(events []string, command string) []string {
	var removed []string
	for _, event := range events {
		if s.RemoveHook(event, command) {
			removed = append(removed, event)
		}
	}
	return removed
}

// Check reports whether command is registered for every event in HookEvents.
func (s *Settings) Check(command string) SettingsCheckResult {
	if !s.Exists() {
		return SettingsCheckResult{
			Status:  StatusMissing,
			Message: fmt.Sprintf("%s not found (run 'webhook-notifier install' to register hooks)", s.filePath),
			Missing: append([]string(nil), HookEvents...),
		}
	}

	var missing []string
	for _, event := range HookEvents {
		if !s.HasHook(event, command) {
			missing = append(missing, event)
		}
	}

	switch len(missing) {
	case 0:
		return SettingsCheckResult{
			Status:   StatusConfigured,
			Message:  fmt.Sprintf("%s runs on %s", command, strings.Join(HookEvents, ", ")),
			FilePath: s.filePath,
		}
	case len(HookEvents):
		return SettingsCheckResult{
			Status:   StatusNotRegistered,
			Message:  fmt.Sprintf("%s is not registered in %s", command, s.filePath),
			FilePath: s.filePath,
			Missing:  missing,
		}
	default:
		return SettingsCheckResult{
			Status:   StatusPartial,
			Message:  fmt.Sprintf("%s is missing for %s in %s", command, strings.Join(missing, ", "), s.filePath),
			FilePath: s.filePath,
			Missing:  missing,
		}
	}
}

// CheckPath loads the settings at path and checks them in one call.
func CheckPath(path, command string) (SettingsCheckResult, error) {
	settings, err := Load(path)
	if err != nil {
		return SettingsCheckResult{}, fmt.Errorf("loading claude settings: %w", err)
	}
	return settings.Check(command), nil
}

// Save writes the settings to disk using atomic write (temp file + rename).
// Creates the .claude directory if it doesn't exist.
func (s *Settings) Save() error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing settings: %w", err)
	}
	data = append(data, '\n')

	return atomicWrite(s.filePath, data)
}

// atomicWrite writes data to a file atomically using temp file + rename.
func atomicWrite(filePath string, data []byte) error {
	dir := filepath.Dir(filePath)
	tmpFile, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", filePath, err)
	}

	tmpPath = ""
	return nil
}
