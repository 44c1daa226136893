package config

// Default values. Webhook defaults only apply when the loaded config has a
// notifiers.webhook section, since the webhook sink needs a URL to be useful.
const (
	DefaultLogDirectory   = "~/.claude/webhook-notifier/logs"
	DefaultContextLength  = 200
	DefaultWebhookTimeout = 10
	DefaultMaxAttempts    = 3
	DefaultTitle          = "Claude Code"
	DefaultNATSSubject    = "claude.notifications"
	DefaultNATSTimeout    = 5
	DefaultServiceName    = "webhook-notifier"
)

// DefaultInclude is the payload allow-list used when none is configured.
var DefaultInclude = []string{"session_id", "timestamp", "project_info", "git_info"}

// Defaults returns flattened default values keyed by config path.
func Defaults(withWebhook bool) map[string]interface{} {
	d := map[string]interface{}{
		"logging.level":     "info",
		"logging.directory": DefaultLogDirectory,
		"logging.format":    "json",
		"logging.rotation":  "daily",

		"events.notification.enabled":         true,
		"events.notification.extract_context": true,
		"events.notification.context_length":  DefaultContextLength,
		"events.session_end.enabled":          true,

		"notifiers.desktop.enabled":                         false,
		"notifiers.desktop.title":                           DefaultTitle,
		"notifiers.desktop.sound":                           "default",
		"notifiers.desktop.actions":                         []interface{}{},
		"notifiers.desktop.templates.notification.title":    "{{title}}",
		"notifiers.desktop.templates.notification.subtitle": "Waiting for {{message_type}}",
		"notifiers.desktop.templates.notification.message":  "{{last_message}}",
		"notifiers.desktop.templates.session_end.title":     "{{title}}",
		"notifiers.desktop.templates.session_end.subtitle":  "Session ended",
		"notifiers.desktop.templates.session_end.message":   "Reason: {{reason}}",

		"notifiers.nats.enabled": false,
		"notifiers.nats.url":     "nats://127.0.0.1:4222",
		"notifiers.nats.subject": DefaultNATSSubject,
		"notifiers.nats.timeout": DefaultNATSTimeout,

		"telemetry.enabled":      false,
		"telemetry.endpoint":     "localhost:4317",
		"telemetry.insecure":     false,
		"telemetry.service_name": DefaultServiceName,
	}

	if withWebhook {
		d["notifiers.webhook.enabled"] = true
		d["notifiers.webhook.url"] = ""
		d["notifiers.webhook.timeout"] = DefaultWebhookTimeout
		d["notifiers.webhook.retry.enabled"] = false
		d["notifiers.webhook.retry.max_attempts"] = DefaultMaxAttempts
		d["notifiers.webhook.retry.backoff"] = "exponential"
		d["notifiers.webhook.payload.include"] = toInterfaces(DefaultInclude)
	}
	return d
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// DefaultFileTemplate is written by `config init`.
const DefaultFileTemplate = `# webhook-notifier configuration
# Values may reference environment variables as ${VAR}.

logging:
  level: info
  directory: ~/.claude/webhook-notifier/logs
  format: json          # json | text
  rotation: daily       # daily | size

events:
  notification:
    enabled: true
    extract_context: true
    context_length: 200   # 50-500
  session_end:
    enabled: true

notifiers:
  webhook:
    enabled: true
    url: ${WEBHOOK_URL}
    timeout: 10           # seconds, 1-60
    retry:
      enabled: true
      max_attempts: 3     # 1-10
      backoff: exponential  # linear | exponential
    headers: {}
    payload:
      include:
        - session_id
        - timestamp
        - project_info
        - git_info
        - context
      custom_fields: {}

  desktop:
    enabled: false
    title: Claude Code
    sound: default
    actions: []
    # - label: Open terminal
    #   command: open -a Terminal

  nats:
    enabled: false
    url: nats://127.0.0.1:4222
    subject: claude.notifications
    timeout: 5

telemetry:
  enabled: false
  endpoint: localhost:4317
  insecure: false
`
