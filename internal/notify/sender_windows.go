//go:build windows

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// windowsSender implements Sender for Windows using PowerShell. Toasts
// raised this way cannot carry action buttons.
type windowsSender struct {
	available bool
}

// newWindowsSender creates a new Windows notification sender
func newWindowsSender() Sender {
	return &windowsSender{available: toolAvailable("powershell")}
}

// newDarwinSender returns a no-op sender on windows
func newDarwinSender() Sender {
	return &noopSender{}
}

// newLinuxSender returns a no-op sender on windows
func newLinuxSender() Sender {
	return &noopSender{}
}

func (s *windowsSender) Available() bool {
	return s.available
}

func (s *windowsSender) Notify(ctx context.Context, a Alert) (string, error) {
	body := a.Message
	if a.Subtitle != "" {
		body = a.Subtitle + "\n" + a.Message
	}

	script := fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$textNodes = $template.GetElementsByTagName('text')
$textNodes.Item(0).AppendChild($template.CreateTextNode('%s')) | Out-Null
$textNodes.Item(1).AppendChild($template.CreateTextNode('%s')) | Out-Null
$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('webhook-notifier').Show($toast)
`, escapeForPowerShell(a.Title), escapeForPowerShell(body))

	if err := powershell(ctx, script); err != nil {
		return "", err
	}
	return "", s.playSound(ctx, a.Sound)
}

func (s *windowsSender) playSound(ctx context.Context, sound string) error {
	switch {
	case sound == "":
		return nil
	case isSoundPath(sound):
		return powershell(ctx, fmt.Sprintf(`
$player = New-Object System.Media.SoundPlayer
$player.SoundLocation = '%s'
$player.PlaySync()
`, escapeForPowerShell(sound)))
	default:
		return powershell(ctx, "[Console]::Beep(800, 200)")
	}
}

func powershell(ctx context.Context, script string) error {
	return exec.CommandContext(ctx, "powershell", "-ExecutionPolicy", "Bypass", "-NoProfile", "-Command", script).Run()
}

// escapeForPowerShell escapes special characters for PowerShell strings
func escapeForPowerShell(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString("''")
		case '`', '$':
			b.WriteRune('`')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
