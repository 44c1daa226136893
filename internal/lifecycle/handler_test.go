// Package lifecycle_test tests the hook pipeline from input to output.
// Related: internal/lifecycle/handler.go, internal/lifecycle/lifecycle.go
// Tags: lifecycle, handler, fan-out, aggregation

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
)

// mockNotifier records Send calls.
type mockNotifier struct {
	name    string
	enabled bool
	fail    bool
	panics  bool
	delay   time.Duration

	calls  atomic.Int32
	mu     sync.Mutex
	events []hook.Event
}

func (m *mockNotifier) Name() string    { return m.name }
func (m *mockNotifier) IsEnabled() bool { return m.enabled }

func (m *mockNotifier) Send(_ context.Context, ev hook.Event) notify.Result {
	m.calls.Add(1)
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics {
		panic("boom")
	}
	if m.fail {
		return notify.Result{Notifier: m.name, Err: errors.New("delivery failed"), Attempts: 3}
	}
	return notify.Result{Success: true, Notifier: m.name, Attempts: 1}
}

// stubExtractor returns a fixed context.
type stubExtractor struct {
	ctx   *hook.Context
	err   error
	calls []string
	lens  []int
}

func (s *stubExtractor) Extract(path string, maxLength int) (*hook.Context, error) {
	s.calls = append(s.calls, path)
	s.lens = append(s.lens, maxLength)
	return s.ctx, s.err
}

// recordingRecorder captures telemetry calls.
type recordingRecorder struct {
	mu         sync.Mutex
	events     []string
	deliveries map[string]bool
}

func (r *recordingRecorder) RecordEvent(_ context.Context, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recordingRecorder) RecordDelivery(_ context.Context, name string, success bool, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deliveries == nil {
		r.deliveries = map[string]bool{}
	}
	r.deliveries[name] = success
}

func (r *recordingRecorder) Close(context.Context) error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Events.Notification = config.NotificationEventConfig{Enabled: true, ExtractContext: true, ContextLength: 200}
	cfg.Events.SessionEnd = config.SessionEndEventConfig{Enabled: true}
	return cfg
}

func notificationInput() *hook.Input {
	return &hook.Input{
		SessionID:      "sess-1",
		TranscriptPath: "/tmp/t.jsonl",
		Cwd:            "/work",
		HookEventName:  hook.EventNotification,
		Message:        "Claude needs your input",
	}
}

func TestHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input      *hook.Input
		notifiers  []*mockNotifier
		configure  func(*config.Config)
		want       hook.Output
		wantCalls  []int32
		wantEvents []string
	}{
		"all succeed": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a", enabled: true}, {name: "b", enabled: true}},
			want:       hook.Output{Continue: true, SuppressOutput: true},
			wantCalls:  []int32{1, 1},
			wantEvents: []string{"notification"},
		},
		"one of two fails": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a", enabled: true}, {name: "b", enabled: true, fail: true}},
			want:       hook.Output{Continue: true, SuppressOutput: true, SystemMessage: "Notifications: 1/2 succeeded"},
			wantCalls:  []int32{1, 1},
			wantEvents: []string{"notification"},
		},
		"panicking notifier counts as failure": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a", enabled: true, panics: true}, {name: "b", enabled: true}},
			want:       hook.Output{Continue: true, SuppressOutput: true, SystemMessage: "Notifications: 1/2 succeeded"},
			wantCalls:  []int32{1, 1},
			wantEvents: []string{"notification"},
		},
		"disabled notifiers are skipped": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a", enabled: false}, {name: "b", enabled: true}},
			want:       hook.Output{Continue: true, SuppressOutput: true},
			wantCalls:  []int32{0, 1},
			wantEvents: []string{"notification"},
		},
		"no enabled notifiers": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a"}},
			want:       hook.Output{Continue: true, SuppressOutput: true},
			wantCalls:  []int32{0},
			wantEvents: []string{"notification"},
		},
		"stop routes to session end": {
			input:      &hook.Input{SessionID: "s", HookEventName: hook.EventStop},
			notifiers:  []*mockNotifier{{name: "a", enabled: true}},
			want:       hook.Output{Continue: true, SuppressOutput: true},
			wantCalls:  []int32{1},
			wantEvents: []string{"session_end"},
		},
		"unsupported event": {
			input:      &hook.Input{SessionID: "s", HookEventName: "PreToolUse"},
			notifiers:  []*mockNotifier{{name: "a", enabled: true}},
			want:       hook.Output{Continue: true},
			wantCalls:  []int32{0},
			wantEvents: []string{"dropped"},
		},
		"missing session id": {
			input:     &hook.Input{HookEventName: hook.EventNotification},
			notifiers: []*mockNotifier{{name: "a", enabled: true}},
			want:      hook.Output{Continue: true},
			wantCalls: []int32{0},
		},
		"missing hook event name": {
			input:     &hook.Input{SessionID: "s"},
			notifiers: []*mockNotifier{{name: "a", enabled: true}},
			want:      hook.Output{Continue: true},
			wantCalls: []int32{0},
		},
		"nil input": {
			notifiers: []*mockNotifier{{name: "a", enabled: true}},
			want:      hook.Output{Continue: true},
			wantCalls: []int32{0},
		},
		"notification events disabled": {
			input:      notificationInput(),
			notifiers:  []*mockNotifier{{name: "a", enabled: true}},
			configure:  func(c *config.Config) { c.Events.Notification.Enabled = false },
			want:       hook.Output{Continue: true},
			wantCalls:  []int32{0},
			wantEvents: []string{"dropped"},
		},
		"session end events disabled": {
			input:      &hook.Input{SessionID: "s", HookEventName: hook.EventSessionEnd, Reason: "clear"},
			notifiers:  []*mockNotifier{{name: "a", enabled: true}},
			configure:  func(c *config.Config) { c.Events.SessionEnd.Enabled = false },
			want:       hook.Output{Continue: true},
			wantCalls:  []int32{0},
			wantEvents: []string{"dropped"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			if tt.configure != nil {
				tt.configure(cfg)
			}
			var ns []notify.Notifier
			for _, n := range tt.notifiers {
				ns = append(ns, n)
			}
			rec := &recordingRecorder{}
			h := NewHandler(cfg, zap.NewNop(),
				WithNotifiers(ns...),
				WithExtractor(&stubExtractor{}),
				WithRecorder(rec),
			)

			got := h.Handle(context.Background(), tt.input)
			assert.Equal(t, tt.want, got)
			for i, n := range tt.notifiers {
				assert.Equal(t, tt.wantCalls[i], n.calls.Load(), "notifier %s", n.name)
			}
			assert.Equal(t, tt.wantEvents, rec.events)
		})
	}
}

func TestHandler_ContextExtraction(t *testing.T) {
	t.Parallel()

	extracted := &hook.Context{LastMessage: "Should I proceed?", MessageType: hook.MessageQuestion}

	tests := map[string]struct {
		extract     bool
		path        string
		extractor   *stubExtractor
		wantContext bool
		wantCalls   int
	}{
		"extracted": {
			extract:     true,
			path:        "/tmp/t.jsonl",
			extractor:   &stubExtractor{ctx: extracted},
			wantContext: true,
			wantCalls:   1,
		},
		"extraction disabled": {
			extract:   false,
			path:      "/tmp/t.jsonl",
			extractor: &stubExtractor{ctx: extracted},
		},
		"no transcript path": {
			extract:   true,
			extractor: &stubExtractor{ctx: extracted},
		},
		"nothing found": {
			extract:   true,
			path:      "/tmp/t.jsonl",
			extractor: &stubExtractor{},
			wantCalls: 1,
		},
		"extraction error is absorbed": {
			extract:   true,
			path:      "/tmp/t.jsonl",
			extractor: &stubExtractor{err: errors.New("permission denied")},
			wantCalls: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Events.Notification.ExtractContext = tt.extract
			cfg.Events.Notification.ContextLength = 120
			n := &mockNotifier{name: "a", enabled: true}
			h := NewHandler(cfg, zap.NewNop(), WithNotifiers(n), WithExtractor(tt.extractor))

			in := notificationInput()
			in.TranscriptPath = tt.path
			out := h.Handle(context.Background(), in)
			assert.True(t, out.Continue)

			require.Len(t, n.events, 1)
			got, ok := n.events[0].Context()
			assert.Equal(t, tt.wantContext, ok)
			if tt.wantContext {
				assert.Equal(t, *extracted, got)
			}
			assert.Len(t, tt.extractor.calls, tt.wantCalls)
			for _, l := range tt.extractor.lens {
				assert.Equal(t, 120, l)
			}
		})
	}
}

func TestHandler_FanOutIsConcurrent(t *testing.T) {
	t.Parallel()

	a := &mockNotifier{name: "a", enabled: true, delay: 200 * time.Millisecond}
	b := &mockNotifier{name: "b", enabled: true, delay: 200 * time.Millisecond, fail: true}
	rec := &recordingRecorder{}
	h := NewHandler(testConfig(), zap.NewNop(), WithNotifiers(a, b), WithExtractor(&stubExtractor{}), WithRecorder(rec))

	start := time.Now()
	deliveries := h.Dispatch(context.Background(), hook.NewSessionEndEvent(hook.Input{SessionID: "s", HookEventName: hook.EventStop}))
	elapsed := time.Since(start)

	require.Len(t, deliveries, 2)
	assert.Equal(t, "a", deliveries[0].Notifier)
	assert.True(t, deliveries[0].Success)
	assert.Equal(t, "b", deliveries[1].Notifier)
	assert.False(t, deliveries[1].Success)
	assert.Equal(t, 3, deliveries[1].Attempts)
	assert.GreaterOrEqual(t, deliveries[0].Duration, 200*time.Millisecond)
	assert.Less(t, elapsed, 390*time.Millisecond)
	assert.Equal(t, map[string]bool{"a": true, "b": false}, rec.deliveries)
}

func TestHandler_LogsOutcomes(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHandler(testConfig(), zap.New(core),
		WithNotifiers(&mockNotifier{name: "hook", enabled: true, fail: true}),
		WithExtractor(&stubExtractor{}),
	)

	h.Handle(context.Background(), &hook.Input{SessionID: "s", HookEventName: "PreToolUse"})
	assert.Equal(t, 1, logs.FilterMessage("unsupported event type").Len())

	h.Handle(context.Background(), notificationInput())
	failed := logs.FilterMessage("notifier failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "hook", failed[0].ContextMap()["notifier"])
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestNewHandler_BuildsNotifiersFromConfig(t *testing.T) {
	t.Parallel()

	h := NewHandler(testConfig(), nil)
	require.Len(t, h.notifiers, 3)

	// Nothing is enabled in an empty config, so the output carries no summary.
	out := h.Handle(context.Background(), &hook.Input{SessionID: "s", HookEventName: hook.EventStop})
	assert.Equal(t, hook.Output{Continue: true, SuppressOutput: true}, out)
}
