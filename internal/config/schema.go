package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "notifiers.webhook.url")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of settable configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"logging.level": {
		Path:          "logging.level",
		Type:          TypeEnum,
		AllowedValues: []string{"debug", "info", "warn", "error"},
		Description:   "Minimum level written to the log files",
		Default:       "info",
	},
	"logging.directory": {
		Path:        "logging.directory",
		Type:        TypeString,
		Description: "Directory for log files",
		Default:     DefaultLogDirectory,
	},
	"logging.format": {
		Path:          "logging.format",
		Type:          TypeEnum,
		AllowedValues: []string{"json", "text"},
		Description:   "Log line encoding",
		Default:       "json",
	},
	"logging.rotation": {
		Path:          "logging.rotation",
		Type:          TypeEnum,
		AllowedValues: []string{"daily", "size"},
		Description:   "Log file rotation scheme",
		Default:       "daily",
	},
	"events.notification.enabled": {
		Path:        "events.notification.enabled",
		Type:        TypeBool,
		Description: "Relay Notification hook events",
		Default:     true,
	},
	"events.notification.extract_context": {
		Path:        "events.notification.extract_context",
		Type:        TypeBool,
		Description: "Attach the last assistant message from the transcript",
		Default:     true,
	},
	"events.notification.context_length": {
		Path:        "events.notification.context_length",
		Type:        TypeInt,
		Description: "Maximum characters of extracted context (50-500)",
		Default:     DefaultContextLength,
	},
	"events.session_end.enabled": {
		Path:        "events.session_end.enabled",
		Type:        TypeBool,
		Description: "Relay SessionEnd and Stop hook events",
		Default:     true,
	},
	"notifiers.webhook.enabled": {
		Path:        "notifiers.webhook.enabled",
		Type:        TypeBool,
		Description: "Enable the webhook notifier",
		Default:     true,
	},
	"notifiers.webhook.url": {
		Path:        "notifiers.webhook.url",
		Type:        TypeString,
		Description: "Webhook endpoint (absolute http or https URL)",
		Default:     "",
	},
	"notifiers.webhook.timeout": {
		Path:        "notifiers.webhook.timeout",
		Type:        TypeInt,
		Description: "Per-attempt timeout in seconds (1-60)",
		Default:     DefaultWebhookTimeout,
	},
	"notifiers.webhook.retry.enabled": {
		Path:        "notifiers.webhook.retry.enabled",
		Type:        TypeBool,
		Description: "Retry failed webhook deliveries",
		Default:     false,
	},
	"notifiers.webhook.retry.max_attempts": {
		Path:        "notifiers.webhook.retry.max_attempts",
		Type:        TypeInt,
		Description: "Total delivery attempts when retry is enabled (1-10)",
		Default:     DefaultMaxAttempts,
	},
	"notifiers.webhook.retry.backoff": {
		Path:          "notifiers.webhook.retry.backoff",
		Type:          TypeEnum,
		AllowedValues: []string{"linear", "exponential"},
		Description:   "Delay schedule between attempts",
		Default:       "exponential",
	},
	"notifiers.desktop.enabled": {
		Path:        "notifiers.desktop.enabled",
		Type:        TypeBool,
		Description: "Enable desktop notifications",
		Default:     false,
	},
	"notifiers.desktop.title": {
		Path:        "notifiers.desktop.title",
		Type:        TypeString,
		Description: "Value of the {{title}} template variable",
		Default:     DefaultTitle,
	},
	"notifiers.desktop.sound": {
		Path:        "notifiers.desktop.sound",
		Type:        TypeString,
		Description: "Notification sound name",
		Default:     "default",
	},
	"notifiers.nats.enabled": {
		Path:        "notifiers.nats.enabled",
		Type:        TypeBool,
		Description: "Publish events to NATS",
		Default:     false,
	},
	"notifiers.nats.url": {
		Path:        "notifiers.nats.url",
		Type:        TypeString,
		Description: "NATS server URL",
		Default:     "nats://127.0.0.1:4222",
	},
	"notifiers.nats.subject": {
		Path:        "notifiers.nats.subject",
		Type:        TypeString,
		Description: "Subject events are published on",
		Default:     DefaultNATSSubject,
	},
	"notifiers.nats.timeout": {
		Path:        "notifiers.nats.timeout",
		Type:        TypeInt,
		Description: "Connect and flush timeout in seconds",
		Default:     DefaultNATSTimeout,
	},
	"telemetry.enabled": {
		Path:        "telemetry.enabled",
		Type:        TypeBool,
		Description: "Export delivery metrics over OTLP",
		Default:     false,
	},
	"telemetry.endpoint": {
		Path:        "telemetry.endpoint",
		Type:        TypeString,
		Description: "OTLP gRPC endpoint",
		Default:     "localhost:4317",
	},
	"telemetry.insecure": {
		Path:        "telemetry.insecure",
		Type:        TypeBool,
		Description: "Disable TLS for the OTLP connection",
		Default:     false,
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// InferType determines the ConfigValueType from a string value.
// Order of inference: bool literals -> integers -> string fallback.
func InferType(value string) ConfigValueType {
	if value == "true" || value == "false" {
		return TypeBool
	}
	if _, err := strconv.Atoi(value); err == nil {
		return TypeInt
	}
	return TypeString
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
