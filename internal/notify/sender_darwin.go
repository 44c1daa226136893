//go:build darwin

package notify

import (
	"context"
	"os/exec"
	"strings"
)

const (
	// DefaultMacOSSound is the system sound used for DefaultSound.
	DefaultMacOSSound = "Glass"
)

// darwinSender implements Sender for macOS. alerter is used when the alert
// has actions, since osascript notifications cannot carry buttons.
type darwinSender struct {
	osascript bool
	alerter   bool
	afplay    bool
}

// newDarwinSender creates a new macOS notification sender
func newDarwinSender() Sender {
	return &darwinSender{
		osascript: toolAvailable("osascript"),
		alerter:   toolAvailable("alerter"),
		afplay:    toolAvailable("afplay"),
	}
}

// newLinuxSender returns a no-op sender on darwin
func newLinuxSender() Sender {
	return &noopSender{}
}

// newWindowsSender returns a no-op sender on darwin
func newWindowsSender() Sender {
	return &noopSender{}
}

func (s *darwinSender) Available() bool {
	return s.osascript || s.alerter
}

func (s *darwinSender) Notify(ctx context.Context, a Alert) (string, error) {
	if s.alerter && (len(a.Actions) > 0 || !s.osascript) {
		return s.notifyAlerter(ctx, a)
	}

	script := "display notification " + appleScriptString(a.Message) + " with title " + appleScriptString(a.Title)
	if a.Subtitle != "" {
		script += " subtitle " + appleScriptString(a.Subtitle)
	}
	if name := macSoundName(a.Sound); name != "" {
		script += " sound name " + appleScriptString(name)
	}
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return "", err
	}
	return "", s.playFile(ctx, a.Sound)
}

// notifyAlerter blocks until the alert is closed and reports the clicked
// action.
func (s *darwinSender) notifyAlerter(ctx context.Context, a Alert) (string, error) {
	args := []string{"-title", a.Title, "-message", a.Message}
	if a.Subtitle != "" {
		args = append(args, "-subtitle", a.Subtitle)
	}
	if name := macSoundName(a.Sound); name != "" {
		args = append(args, "-sound", name)
	}
	if len(a.Actions) > 0 {
		args = append(args, "-actions", strings.Join(a.Actions, ","))
	}

	out, err := exec.CommandContext(ctx, "alerter", args...).Output()
	if err != nil {
		return "", err
	}
	if err := s.playFile(ctx, a.Sound); err != nil {
		return "", err
	}
	return actionLabel(out, a.Actions), nil
}

func (s *darwinSender) playFile(ctx context.Context, sound string) error {
	if !s.afplay || !isSoundPath(sound) {
		return nil
	}
	return exec.CommandContext(ctx, "afplay", sound).Run()
}

func macSoundName(sound string) string {
	switch {
	case sound == "":
		return ""
	case sound == DefaultSound:
		return DefaultMacOSSound
	case isSoundPath(sound):
		return ""
	default:
		return sound
	}
}
