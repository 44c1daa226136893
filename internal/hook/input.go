// Package hook defines the wire types exchanged with the host assistant's hook
// framework: the JSON input read from stdin, the typed events derived from it,
// and the JSON output written back to stdout.
package hook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// EventName is the hook_event_name discriminant sent by the host.
type EventName string

const (
	EventNotification EventName = "Notification"
	EventSessionEnd   EventName = "SessionEnd"
	EventStop         EventName = "Stop"
)

// PermissionMode is informational only; it never affects routing.
type PermissionMode string

const (
	PermissionDefault           PermissionMode = "default"
	PermissionPlan              PermissionMode = "plan"
	PermissionAcceptEdits       PermissionMode = "acceptEdits"
	PermissionBypassPermissions PermissionMode = "bypassPermissions"
)

// NotificationType values the host attaches to Notification events.
const (
	NotificationWaitingForInput    = "waiting_for_input"
	NotificationPermissionRequired = "permission_required"
	NotificationIdle               = "idle"
)

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// Input is a single hook invocation payload. It is a tagged union over
// Notification, SessionEnd and Stop: the variant fields are only meaningful
// when HookEventName selects that variant.
type Input struct {
	SessionID      string         `json:"session_id"`
	TranscriptPath string         `json:"transcript_path"`
	Cwd            string         `json:"cwd"`
	PermissionMode PermissionMode `json:"permission_mode"`
	HookEventName  EventName      `json:"hook_event_name"`

	// Notification
	Message          string `json:"message,omitempty"`
	NotificationType string `json:"notification_type,omitempty"`

	// SessionEnd
	Reason string `json:"reason,omitempty"`

	// Stop
	StopHookActive bool `json:"stop_hook_active,omitempty"`
}

// Parse decodes raw stdin bytes into an Input. Only empty input and JSON
// syntax errors fail. Fields of an unexpected type are coerced to their
// textual form, and missing fields are left empty (see Validate).
func Parse(data []byte) (*Input, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("no input received")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("failed to parse hook input: invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return &Input{}, nil
	}
	str := func(key string) string { return root.Get(key).String() }

	return &Input{
		SessionID:        str("session_id"),
		TranscriptPath:   str("transcript_path"),
		Cwd:              str("cwd"),
		PermissionMode:   PermissionMode(str("permission_mode")),
		HookEventName:    EventName(str("hook_event_name")),
		Message:          str("message"),
		NotificationType: str("notification_type"),
		Reason:           str("reason"),
		StopHookActive:   root.Get("stop_hook_active").Bool(),
	}, nil
}

// Validate checks the fields every variant requires.
func (in *Input) Validate() error {
	if in.SessionID == "" {
		return fmt.Errorf("%w: session_id", ErrMissingField)
	}
	if in.HookEventName == "" {
		return fmt.Errorf("%w: hook_event_name", ErrMissingField)
	}
	return nil
}

// EndReason returns the reason a session ended. Stop events carry no reason
// and report "stopped".
func (in *Input) EndReason() string {
	if in.Reason != "" {
		return in.Reason
	}
	return "stopped"
}
