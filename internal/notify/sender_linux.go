//go:build linux

package notify

import (
	"context"
	"os"
	"os/exec"
)

// linuxSender implements Sender for Linux using notify-send and paplay
type linuxSender struct {
	visualAvailable bool
	soundAvailable  bool
}

// newLinuxSender creates a new Linux notification sender
func newLinuxSender() Sender {
	return &linuxSender{
		visualAvailable: toolAvailable("notify-send") && hasDisplay(),
		soundAvailable:  toolAvailable("paplay"),
	}
}

// newDarwinSender returns a no-op sender on linux
func newDarwinSender() Sender {
	return &noopSender{}
}

// newWindowsSender returns a no-op sender on linux
func newWindowsSender() Sender {
	return &noopSender{}
}

// hasDisplay checks if a display environment is available
func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func (s *linuxSender) Available() bool {
	return s.visualAvailable
}

// Notify uses notify-send. With actions it waits for the notification to
// close and notify-send prints the activated action key.
func (s *linuxSender) Notify(ctx context.Context, a Alert) (string, error) {
	args := []string{"-u", "normal", "-a", "webhook-notifier"}
	for _, label := range a.Actions {
		args = append(args, "--action="+label+"="+label)
	}
	if len(a.Actions) > 0 {
		args = append(args, "--wait")
	}
	body := a.Message
	if a.Subtitle != "" {
		body = a.Subtitle + "\n" + a.Message
	}
	args = append(args, a.Title, body)

	out, err := exec.CommandContext(ctx, "notify-send", args...).Output()
	if err != nil {
		return "", err
	}

	// No default sound on Linux; only custom files are played.
	if s.soundAvailable && isSoundPath(a.Sound) {
		if err := exec.CommandContext(ctx, "paplay", a.Sound).Run(); err != nil {
			return "", err
		}
	}
	return actionLabel(out, a.Actions), nil
}
