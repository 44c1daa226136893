// Package health implements the checks behind the doctor command.
package health

import (
	"fmt"
	"os"
	"strings"

	"github.com/ariel-frischer/webhook-notifier/internal/claude"
	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Warning marks a failed check that does not fail the report.
	Warning bool
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed && !c.Warning {
		r.Passed = false
	}
}

// Options supplies what the checks inspect.
type Options struct {
	Manager *config.Manager
	// GOOS is the platform the desktop check assumes.
	GOOS string
	// Sender is the desktop sender to probe. Defaults to notify.NewSender(GOOS).
	Sender notify.Sender
	Git    notify.GitExtractor
	// WorkDir is inspected for repository metadata.
	WorkDir string
	// HookSettings are Claude settings files searched for the hook command.
	// The check is skipped when empty.
	HookSettings []string
}

// RunHealthChecks runs all health checks and returns a report
func RunHealthChecks(opts Options) *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 0),
		Passed: true,
	}
	cfg := opts.Manager.Config()
	if opts.Sender == nil {
		opts.Sender = notify.NewSender(opts.GOOS)
	}

	report.add(CheckConfig(opts.Manager))
	report.add(CheckNotifiers(cfg))
	if cfg.Notifiers.Desktop.Enabled {
		report.add(CheckDesktop(opts.GOOS, opts.Sender))
	}
	report.add(CheckLogDirectory(cfg.Logging.Directory))
	if opts.Git != nil {
		report.add(CheckGit(opts.Git, opts.WorkDir))
	}
	if len(opts.HookSettings) > 0 {
		report.add(CheckHooks(opts.HookSettings, claude.DefaultCommand))
	}
	return report
}

// CheckConfig reports load warnings and validation errors.
func CheckConfig(m *config.Manager) CheckResult {
	source := m.Path()
	if source == "" {
		source = "built-in defaults"
	}

	errs := m.Validate()
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return CheckResult{
			Name:    "Configuration",
			Passed:  false,
			Message: fmt.Sprintf("%d error(s) in %s: %s", len(errs), source, strings.Join(msgs, "; ")),
		}
	}
	if warnings := m.Warnings(); len(warnings) > 0 {
		return CheckResult{
			Name:    "Configuration",
			Passed:  false,
			Warning: true,
			Message: fmt.Sprintf("loaded %s with warnings: %s", source, strings.Join(warnings, "; ")),
		}
	}
	return CheckResult{
		Name:    "Configuration",
		Passed:  true,
		Message: fmt.Sprintf("loaded %s", source),
	}
}

// CheckNotifiers warns when every notifier is disabled.
func CheckNotifiers(cfg *config.Config) CheckResult {
	var enabled []string
	if cfg.Notifiers.Webhook != nil && cfg.Notifiers.Webhook.Enabled {
		enabled = append(enabled, notify.WebhookName)
	}
	if cfg.Notifiers.Desktop.Enabled {
		enabled = append(enabled, notify.DesktopName)
	}
	if cfg.Notifiers.NATS.Enabled {
		enabled = append(enabled, notify.NATSName)
	}

	if len(enabled) == 0 {
		return CheckResult{
			Name:    "Notifiers",
			Passed:  false,
			Warning: true,
			Message: "no notifiers are enabled",
		}
	}
	return CheckResult{
		Name:    "Notifiers",
		Passed:  true,
		Message: "enabled: " + strings.Join(enabled, ", "),
	}
}

// CheckDesktop checks that a notification tool exists for goos.
func CheckDesktop(goos string, sender notify.Sender) CheckResult {
	if !sender.Available() {
		return CheckResult{
			Name:    "Desktop notifications",
			Passed:  false,
			Message: fmt.Sprintf("no notification tool found on %s", goos),
		}
	}
	return CheckResult{
		Name:    "Desktop notifications",
		Passed:  true,
		Message: fmt.Sprintf("notification tool available on %s", goos),
	}
}

// CheckLogDirectory checks that dir can be created and written to.
func CheckLogDirectory(dir string) CheckResult {
	fail := func(err error) CheckResult {
		return CheckResult{
			Name:    "Log directory",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", dir, err),
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(err)
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fail(err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return CheckResult{
		Name:    "Log directory",
		Passed:  true,
		Message: dir,
	}
}

// CheckGit reports repository metadata for dir. Outside a repository the
// payload simply has no git section, so this is only a warning.
func CheckGit(g notify.GitExtractor, dir string) CheckResult {
	info := g.Extract(dir)
	if info == nil {
		return CheckResult{
			Name:    "Git",
			Passed:  false,
			Warning: true,
			Message: fmt.Sprintf("%s is not inside a git repository", dir),
		}
	}

	parts := []string{}
	if info.Branch != nil {
		parts = append(parts, "branch "+*info.Branch)
	}
	if info.Commit != nil {
		parts = append(parts, "commit "+*info.Commit)
	}
	if info.Repo != nil {
		parts = append(parts, "origin "+*info.Repo)
	}
	if len(parts) == 0 {
		parts = append(parts, "repository found")
	}
	return CheckResult{
		Name:    "Git",
		Passed:  true,
		Message: strings.Join(parts, ", "),
	}
}

// CheckHooks passes when any of the settings files registers command for
// every hook event. A missing registration is a warning since hooks may be
// configured elsewhere, such as a plugin or managed settings.
func CheckHooks(paths []string, command string) CheckResult {
	var problems []string
	for _, path := range paths {
		result, err := claude.CheckPath(path, command)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if result.Status == claude.StatusConfigured {
			return CheckResult{
				Name:    "Claude hooks",
				Passed:  true,
				Message: fmt.Sprintf("%s (%s)", result.Message, path),
			}
		}
		if result.Status == claude.StatusPartial {
			problems = append(problems, result.Message)
		}
	}

	msg := "not registered (run 'webhook-notifier install')"
	if len(problems) > 0 {
		msg = strings.Join(problems, "; ")
	}
	return CheckResult{
		Name:    "Claude hooks",
		Passed:  false,
		Warning: true,
		Message: msg,
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var b strings.Builder

	for _, check := range report.Checks {
		switch {
		case check.Passed:
			fmt.Fprintf(&b, "✓ %s: %s\n", check.Name, check.Message)
		case check.Warning:
			fmt.Fprintf(&b, "! %s: %s\n", check.Name, check.Message)
		default:
			fmt.Fprintf(&b, "✗ %s: %s\n", check.Name, check.Message)
		}
	}

	return b.String()
}
