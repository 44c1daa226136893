package notify

import (
	"os"
	"time"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/git"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// Source identifies this program in every payload.
const Source = "claude-code-webhook-notifier"

// timestampLayout is ISO-8601 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ProjectDirEnv overrides the input cwd as the project directory.
const ProjectDirEnv = "CLAUDE_PROJECT_DIR"

// Include names accepted by payload.include.
const (
	IncludeSessionID      = "session_id"
	IncludeTimestamp      = "timestamp"
	IncludeProjectInfo    = "project_info"
	IncludeGitInfo        = "git_info"
	IncludeContext        = "context"
	IncludeTranscriptPath = "transcript_path"
)

// GitExtractor resolves repository metadata for a directory.
type GitExtractor interface {
	Extract(dir string) *git.Info
}

// PayloadBuilder turns events into webhook payloads.
type PayloadBuilder struct {
	cfg       config.PayloadConfig
	git       GitExtractor
	now       func() time.Time
	lookupEnv func(string) (string, bool)
}

// PayloadOption configures a PayloadBuilder.
type PayloadOption func(*PayloadBuilder)

// WithGitExtractor replaces the go-git backed extractor.
func WithGitExtractor(g GitExtractor) PayloadOption {
	return func(b *PayloadBuilder) { b.git = g }
}

// WithClock fixes the payload timestamp source.
func WithClock(now func() time.Time) PayloadOption {
	return func(b *PayloadBuilder) { b.now = now }
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) PayloadOption {
	return func(b *PayloadBuilder) { b.lookupEnv = fn }
}

// NewPayloadBuilder returns a builder for cfg.
func NewPayloadBuilder(cfg config.PayloadConfig, opts ...PayloadOption) *PayloadBuilder {
	b := &PayloadBuilder{
		cfg:       cfg,
		git:       git.NewExtractor(nil),
		now:       time.Now,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the payload for ev. Excluded keys are removed before
// custom fields are merged, so custom fields always win.
func (b *PayloadBuilder) Build(ev hook.Event) map[string]any {
	in := ev.Input()
	payload := map[string]any{
		"event":     string(ev.Kind()),
		"timestamp": b.now().UTC().Format(timestampLayout),
		"source":    Source,
	}

	switch ev.Kind() {
	case hook.KindNotification:
		notificationType := in.NotificationType
		if notificationType == "" {
			notificationType = hook.NotificationWaitingForInput
		}
		payload["notification_type"] = notificationType
		payload["message"] = in.Message

		if ctx, ok := ev.Context(); ok && b.cfg.Includes(IncludeContext) {
			payload["context"] = map[string]any{
				"last_message": ctx.LastMessage,
				"message_type": string(ctx.MessageType),
			}
		}
		if b.cfg.Includes(IncludeSessionID) {
			session := map[string]any{"id": in.SessionID}
			if b.cfg.Includes(IncludeTranscriptPath) {
				session["transcript_path"] = in.TranscriptPath
			}
			payload["session"] = session
		}

	case hook.KindSessionEnd:
		session := map[string]any{
			"id":     in.SessionID,
			"reason": in.EndReason(),
		}
		if b.cfg.Includes(IncludeTranscriptPath) {
			session["transcript_path"] = in.TranscriptPath
		}
		payload["session"] = session
	}

	if b.cfg.Includes(IncludeProjectInfo) {
		payload["project"] = b.project(in)
	}

	for _, key := range b.cfg.Exclude {
		delete(payload, key)
	}
	for k, v := range b.cfg.CustomFields {
		payload[k] = v
	}
	return payload
}

func (b *PayloadBuilder) project(in hook.Input) map[string]any {
	dir := in.Cwd
	if v, ok := b.lookupEnv(ProjectDirEnv); ok && v != "" {
		dir = v
	}
	project := map[string]any{"directory": dir}
	if b.cfg.Includes(IncludeGitInfo) {
		var info *git.Info
		if dir != "" {
			info = b.git.Extract(dir)
		}
		if info == nil {
			info = &git.Info{}
		}
		project["git"] = info
	}
	return project
}
