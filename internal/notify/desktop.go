package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// DesktopName is the desktop notifier's stable name.
const DesktopName = "desktop"

var (
	// ErrDesktopDisabled is reported by Send when IsEnabled is false.
	ErrDesktopDisabled = errors.New("desktop notifier is not enabled or platform is unsupported")
	// ErrDesktopUnavailable is reported when no notification tool was found.
	ErrDesktopUnavailable = errors.New("no desktop notification tool available")
)

// ActionRunner starts an action command without waiting for it to finish.
type ActionRunner func(command string) error

// DesktopNotifier shows native OS notifications.
type DesktopNotifier struct {
	cfg       config.DesktopConfig
	goos      string
	sender    Sender
	runAction ActionRunner
	logger    *zap.Logger
}

// DesktopOption configures a DesktopNotifier.
type DesktopOption func(*DesktopNotifier)

// WithSender replaces the platform sender.
func WithSender(s Sender) DesktopOption {
	return func(d *DesktopNotifier) { d.sender = s }
}

// WithPlatform overrides runtime.GOOS.
func WithPlatform(goos string) DesktopOption {
	return func(d *DesktopNotifier) { d.goos = goos }
}

// WithActionRunner replaces the shell command runner.
func WithActionRunner(r ActionRunner) DesktopOption {
	return func(d *DesktopNotifier) { d.runAction = r }
}

// NewDesktopNotifier returns a notifier for cfg.
func NewDesktopNotifier(cfg config.DesktopConfig, logger *zap.Logger, opts ...DesktopOption) *DesktopNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DesktopNotifier{
		cfg:    cfg,
		goos:   runtime.GOOS,
		logger: logger.Named(DesktopName),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sender == nil {
		d.sender = NewSender(d.goos)
	}
	if d.runAction == nil {
		d.runAction = shellRunner(d.goos, d.logger)
	}
	return d
}

func (d *DesktopNotifier) Name() string { return DesktopName }

func (d *DesktopNotifier) IsEnabled() bool {
	return d.cfg.Enabled && platformSupported(d.goos)
}

// Send shows the notification and blocks until it is dismissed or an action
// is activated. Activated actions run in the background.
func (d *DesktopNotifier) Send(ctx context.Context, ev hook.Event) Result {
	if !d.IsEnabled() {
		return failure(DesktopName, 0, ErrDesktopDisabled)
	}
	if !d.sender.Available() {
		return failure(DesktopName, 1, ErrDesktopUnavailable)
	}

	alert := d.Format(ev)
	if _, err := ResolveSoundFile(alert.Sound); err != nil {
		d.logger.Warn("falling back to default sound", zap.String("sound", alert.Sound), zap.Error(err))
		alert.Sound = DefaultSound
	}

	activated, err := d.sender.Notify(ctx, alert)
	if err != nil {
		d.logger.Error("desktop notification failed", zap.Error(err))
		return failure(DesktopName, 1, fmt.Errorf("desktop notification failed: %w", err))
	}
	d.logger.Info("desktop notification sent")

	if activated != "" {
		d.handleAction(activated)
	}
	return success(DesktopName, 1, nil)
}

// Format renders the configured templates for ev.
func (d *DesktopNotifier) Format(ev hook.Event) Alert {
	in := ev.Input()
	var (
		tmpl config.TemplateConfig
		vars map[string]string
	)

	switch ev.Kind() {
	case hook.KindNotification:
		tmpl = d.cfg.Templates.Notification
		vars = map[string]string{
			"title":        d.cfg.Title,
			"message_type": "input",
			"last_message": in.Message,
			"message":      in.Message,
			"session_id":   in.SessionID,
		}
		if ctx, ok := ev.Context(); ok {
			if ctx.MessageType != "" {
				vars["message_type"] = string(ctx.MessageType)
			}
			if ctx.LastMessage != "" {
				vars["last_message"] = ctx.LastMessage
			}
		}
		if tmpl.Message == "" {
			tmpl.Message = "{{message}}"
		}
	default:
		tmpl = d.cfg.Templates.SessionEnd
		vars = map[string]string{
			"title":      d.cfg.Title,
			"reason":     in.EndReason(),
			"session_id": in.SessionID,
		}
		if tmpl.Message == "" {
			tmpl.Message = "Reason: {{reason}}"
		}
	}
	if tmpl.Title == "" {
		tmpl.Title = "{{title}}"
	}

	alert := Alert{
		Title:   Render(tmpl.Title, vars),
		Message: Render(tmpl.Message, vars),
		Sound:   d.cfg.Sound,
	}
	if tmpl.Subtitle != "" {
		alert.Subtitle = Render(tmpl.Subtitle, vars)
	}
	for _, a := range d.cfg.Actions {
		alert.Actions = append(alert.Actions, a.Label)
	}
	return alert
}

func (d *DesktopNotifier) handleAction(label string) {
	action, ok := d.cfg.Action(label)
	if !ok || action.Command == "" {
		d.logger.Debug("action has no command", zap.String("label", label))
		return
	}
	d.logger.Debug("executing action command", zap.String("label", label), zap.String("command", action.Command))
	if err := d.runAction(action.Command); err != nil {
		d.logger.Error("action command failed", zap.String("command", action.Command), zap.Error(err))
	}
}

func platformSupported(goos string) bool {
	for _, p := range config.SupportedDesktopPlatforms {
		if p == goos {
			return true
		}
	}
	return false
}

// shellRunner starts command through the platform shell. The child is not
// tied to this process and outlives it; a non-zero exit is logged only.
func shellRunner(goos string, logger *zap.Logger) ActionRunner {
	return func(command string) error {
		var cmd *exec.Cmd
		if goos == "windows" {
			cmd = exec.Command("cmd", "/C", command)
		} else {
			cmd = exec.Command("sh", "-c", command)
		}
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() {
			if err := cmd.Wait(); err != nil {
				logger.Error("action command failed", zap.String("command", command), zap.Error(err))
			}
		}()
		return nil
	}
}
