package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SupportedDesktopPlatforms lists GOOS values with a desktop notifier.
var SupportedDesktopPlatforms = []string{"darwin", "linux", "windows"}

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	file := e.FilePath
	if file == "" {
		file = "<defaults>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", file, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", file, e.Message)
}

// ValidateYAMLSyntax checks if the YAML file has valid syntax.
// Returns nil if valid, or a ValidationError with line/column information if invalid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsPermission(err) {
			return &ValidationError{FilePath: filePath, Message: "permission denied"}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, filePath)
}

// ValidateYAMLSyntaxFromBytes checks if YAML data has valid syntax.
func ValidateYAMLSyntaxFromBytes(data []byte, filePath string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		var typeError *yaml.TypeError
		if errors.As(err, &typeError) {
			return &ValidationError{FilePath: filePath, Message: strings.Join(typeError.Errors, "; ")}
		}
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}
	return nil
}

// ValidateConfig returns every problem found in cfg: struct tag violations
// first, then cross-field rules. goos is the platform the desktop notifier
// would run on.
func ValidateConfig(cfg *Config, filePath, goos string) []*ValidationError {
	var errs []*ValidationError

	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, &ValidationError{
					FilePath: filePath,
					Field:    fieldPath(fe.Namespace()),
					Message:  describeTag(fe),
				})
			}
		} else {
			errs = append(errs, &ValidationError{FilePath: filePath, Message: err.Error()})
		}
	}

	if wh := cfg.Notifiers.Webhook; wh != nil && wh.Enabled {
		if wh.URL == "" {
			errs = append(errs, &ValidationError{
				FilePath: filePath,
				Field:    "notifiers.webhook.url",
				Message:  "is required when the webhook notifier is enabled",
			})
		} else if err := checkURL(wh.URL, "http", "https"); err != nil {
			errs = append(errs, &ValidationError{
				FilePath: filePath,
				Field:    "notifiers.webhook.url",
				Message:  err.Error(),
			})
		}
	}

	if cfg.Notifiers.Desktop.Enabled && !desktopSupported(goos) {
		errs = append(errs, &ValidationError{
			FilePath: filePath,
			Field:    "notifiers.desktop.enabled",
			Message:  fmt.Sprintf("desktop notifications are not supported on %s", goos),
		})
	}

	if n := cfg.Notifiers.NATS; n.Enabled {
		if n.URL == "" {
			errs = append(errs, &ValidationError{
				FilePath: filePath,
				Field:    "notifiers.nats.url",
				Message:  "is required when the nats notifier is enabled",
			})
		}
		if n.Subject == "" {
			errs = append(errs, &ValidationError{
				FilePath: filePath,
				Field:    "notifiers.nats.subject",
				Message:  "is required when the nats notifier is enabled",
			})
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		errs = append(errs, &ValidationError{
			FilePath: filePath,
			Field:    "telemetry.endpoint",
			Message:  "is required when telemetry is enabled",
		})
	}

	return errs
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("must be an absolute URL: %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported URL scheme %q (expected %s)", u.Scheme, strings.Join(schemes, " or "))
}

func desktopSupported(goos string) bool {
	for _, p := range SupportedDesktopPlatforms {
		if p == goos {
			return true
		}
	}
	return false
}

// fieldPath turns a validator namespace like
// "Config.Notifiers.Webhook.Retry.MaxAttempts" into the config key
// "notifiers.webhook.retry.max_attempts".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// extractLineColumn attempts to extract line and column numbers from a YAML error message.
// Returns 0, 0 if unable to extract.
func extractLineColumn(errMsg string) (line, column int) {
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError removes the "yaml: line X:" prefix from error messages.
func cleanYAMLError(errMsg string) string {
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 && strings.HasPrefix(errMsg, "yaml:") {
		return errMsg[idx+2:]
	}
	return errMsg
}
