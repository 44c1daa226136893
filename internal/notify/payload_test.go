// Package notify_test tests webhook payload construction.
// Related: internal/notify/payload.go
// Tags: notify, payload, webhook

package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/git"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

var payloadClock = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 123e6, time.UTC) }

func noEnv(string) (string, bool) { return "", false }

func TestPayloadBuilder_Build(t *testing.T) {
	t.Parallel()

	gitInfo := &git.Info{Branch: strPtr("main"), Repo: strPtr("git@example.com:acme/app.git"), Commit: strPtr("abc1234")}
	notification := hook.Input{
		SessionID:      "sess-1",
		TranscriptPath: "/tmp/t.jsonl",
		Cwd:            "/work/app",
		HookEventName:  hook.EventNotification,
		Message:        "Claude needs your input",
	}
	ctx := &hook.Context{LastMessage: "Should I proceed?", MessageType: hook.MessageQuestion}

	tests := map[string]struct {
		event hook.Event
		cfg   config.PayloadConfig
		env   map[string]string
		want  map[string]any
	}{
		"notification with defaults": {
			event: hook.NewNotificationEvent(notification, ctx),
			cfg:   config.PayloadConfig{Include: config.DefaultInclude},
			want: map[string]any{
				"event":             "notification",
				"timestamp":         "2026-03-14T09:00:00.123Z",
				"source":            Source,
				"notification_type": "waiting_for_input",
				"message":           "Claude needs your input",
				"session":           map[string]any{"id": "sess-1"},
				"project":           map[string]any{"directory": "/work/app", "git": gitInfo},
			},
		},
		"notification with context and transcript": {
			event: hook.NewNotificationEvent(notification, ctx),
			cfg:   config.PayloadConfig{Include: []string{"context", "session_id", "transcript_path"}},
			want: map[string]any{
				"event":             "notification",
				"timestamp":         "2026-03-14T09:00:00.123Z",
				"source":            Source,
				"notification_type": "waiting_for_input",
				"message":           "Claude needs your input",
				"context":           map[string]any{"last_message": "Should I proceed?", "message_type": "question"},
				"session":           map[string]any{"id": "sess-1", "transcript_path": "/tmp/t.jsonl"},
			},
		},
		"context included but absent": {
			event: hook.NewNotificationEvent(notification, nil),
			cfg:   config.PayloadConfig{Include: []string{"context"}},
			want: map[string]any{
				"event":             "notification",
				"timestamp":         "2026-03-14T09:00:00.123Z",
				"source":            Source,
				"notification_type": "waiting_for_input",
				"message":           "Claude needs your input",
			},
		},
		"stop event reports stopped": {
			event: hook.NewSessionEndEvent(hook.Input{SessionID: "sess-2", HookEventName: hook.EventStop, TranscriptPath: "/tmp/t.jsonl"}),
			cfg:   config.PayloadConfig{},
			want: map[string]any{
				"event":     "session_end",
				"timestamp": "2026-03-14T09:00:00.123Z",
				"source":    Source,
				"session":   map[string]any{"id": "sess-2", "reason": "stopped"},
			},
		},
		"session end with transcript and project dir override": {
			event: hook.NewSessionEndEvent(hook.Input{SessionID: "sess-3", HookEventName: hook.EventSessionEnd, Reason: "logout", Cwd: "/work/app", TranscriptPath: "/tmp/t.jsonl"}),
			cfg:   config.PayloadConfig{Include: []string{"transcript_path", "project_info"}},
			env:   map[string]string{ProjectDirEnv: "/projects/app"},
			want: map[string]any{
				"event":     "session_end",
				"timestamp": "2026-03-14T09:00:00.123Z",
				"source":    Source,
				"session":   map[string]any{"id": "sess-3", "reason": "logout", "transcript_path": "/tmp/t.jsonl"},
				"project":   map[string]any{"directory": "/projects/app"},
			},
		},
		"exclude then custom fields override": {
			event: hook.NewNotificationEvent(hook.Input{SessionID: "s", HookEventName: hook.EventNotification, NotificationType: "idle", Message: "m"}, nil),
			cfg: config.PayloadConfig{
				Exclude:      []string{"source", "message"},
				CustomFields: map[string]any{"event": "custom", "team": "platform"},
			},
			want: map[string]any{
				"event":             "custom",
				"timestamp":         "2026-03-14T09:00:00.123Z",
				"notification_type": "idle",
				"team":              "platform",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			lookup := noEnv
			if tt.env != nil {
				lookup = func(k string) (string, bool) {
					v, ok := tt.env[k]
					return v, ok
				}
			}
			b := NewPayloadBuilder(tt.cfg,
				WithClock(payloadClock),
				WithGitExtractor(&stubGit{info: gitInfo}),
				WithLookupEnv(lookup),
			)
			assert.Equal(t, tt.want, b.Build(tt.event))
		})
	}
}

func TestPayloadBuilder_GitOutsideRepository(t *testing.T) {
	t.Parallel()

	g := &stubGit{}
	b := NewPayloadBuilder(config.PayloadConfig{Include: []string{"project_info", "git_info"}},
		WithClock(payloadClock),
		WithGitExtractor(g),
		WithLookupEnv(noEnv),
	)
	got := b.Build(hook.NewSessionEndEvent(hook.Input{SessionID: "s", HookEventName: hook.EventStop, Cwd: "/tmp/plain"}))

	assert.Equal(t, map[string]any{"directory": "/tmp/plain", "git": &git.Info{}}, got["project"])
	assert.Equal(t, []string{"/tmp/plain"}, g.dirs)

	body, err := json.Marshal(got["project"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"directory":"/tmp/plain","git":{"branch":null,"repo":null,"commit":null}}`, string(body))
}
