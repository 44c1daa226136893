package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultSound selects the platform's default notification sound.
const DefaultSound = "default"

// Alert is one rendered desktop notification.
type Alert struct {
	Title    string
	Subtitle string
	Message  string
	// Sound is "default", a system sound name, or an audio file path.
	Sound string
	// Actions are button labels; support varies by platform.
	Actions []string
}

// Sender defines the interface for platform-specific notification senders
type Sender interface {
	// Available reports whether a notification tool was found.
	Available() bool
	// Notify shows a and blocks until it is dismissed or an action is
	// activated. It returns the activated action label, or "".
	Notify(ctx context.Context, a Alert) (string, error)
}

// NewSender returns the sender for goos. Unsupported platforms get a sender
// that is never available.
func NewSender(goos string) Sender {
	switch goos {
	case "darwin":
		return newDarwinSender()
	case "linux":
		return newLinuxSender()
	case "windows":
		return newWindowsSender()
	default:
		return &noopSender{}
	}
}

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// noopSender is a sender that does nothing (for unsupported platforms)
type noopSender struct{}

func (s *noopSender) Available() bool                               { return false }
func (s *noopSender) Notify(context.Context, Alert) (string, error) { return "", nil }

// supportedAudioExtensions contains file extensions supported for custom sounds
var supportedAudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".aiff": true,
	".aif":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
	".oga":  true,
}

// isSoundPath reports whether sound names a file rather than a system sound.
func isSoundPath(sound string) bool {
	return strings.ContainsRune(sound, '/') || strings.ContainsRune(sound, '\\') || filepath.Ext(sound) != ""
}

// ResolveSoundFile validates a custom sound. It returns "" for the default
// sound and for system sound names, the path for a usable audio file, and
// an error for a path that cannot be played.
func ResolveSoundFile(sound string) (string, error) {
	if sound == "" || sound == DefaultSound || !isSoundPath(sound) {
		return "", nil
	}

	info, err := os.Stat(sound)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("custom sound file not found: %s", sound)
		}
		return "", fmt.Errorf("cannot access custom sound file %s: %w", sound, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("sound path is a directory, not a file: %s", sound)
	}

	ext := strings.ToLower(filepath.Ext(sound))
	if !supportedAudioExtensions[ext] {
		return "", fmt.Errorf("unsupported audio format %q for file: %s", ext, sound)
	}
	return sound, nil
}

// actionLabel maps a tool's stdout to an activated action label. Values
// that start with "@" are status markers, not actions.
func actionLabel(out []byte, actions []string) string {
	label := strings.TrimSpace(string(out))
	if label == "" || strings.HasPrefix(label, "@") {
		return ""
	}
	for _, a := range actions {
		if a == label {
			return label
		}
	}
	return ""
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// appleScriptString quotes s as an AppleScript string literal. AppleScript
// only understands the \\ and \" escapes; every other character, including
// newlines and non-ASCII text, is taken literally.
func appleScriptString(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}
