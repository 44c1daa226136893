// Package notify delivers hook events to external sinks.
//
// Every sink implements Notifier. A Notifier never panics or returns an
// error from Send: failures are reported in the Result so the caller can
// aggregate outcomes across sinks.
//
// # Sinks
//
//   - webhook: HTTP POST of a JSON payload with per-attempt timeout and retry
//   - desktop: native OS notification with templated text and action buttons
//   - nats: the webhook payload published to a NATS subject
//
// # Platform Support
//
//   - macOS: alerter when actions are configured, otherwise osascript
//   - Linux: notify-send (actions need libnotify 0.7.9 or later)
//   - Windows: PowerShell toast notifications
package notify
