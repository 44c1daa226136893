// Package notify_test provides mock implementations for notifier testing.
// Related: internal/notify/sender.go, internal/notify/nats.go, internal/notify/payload.go
// Tags: notify, mocks, testing

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ariel-frischer/webhook-notifier/internal/git"
)

// MockSender records alerts and returns configured results.
type MockSender struct {
	mu sync.Mutex

	available bool
	activate  string
	err       error

	Alerts []Alert
}

// NewMockSender creates a new mock sender with default behavior (available, no errors)
func NewMockSender() *MockSender {
	return &MockSender{available: true}
}

// WithAvailable configures whether a notification tool is present.
func (m *MockSender) WithAvailable(available bool) *MockSender {
	m.available = available
	return m
}

// WithActivation makes Notify report the given action label.
func (m *MockSender) WithActivation(label string) *MockSender {
	m.activate = label
	return m
}

// WithError configures the mock to fail Notify.
func (m *MockSender) WithError(err error) *MockSender {
	m.err = err
	return m
}

func (m *MockSender) Available() bool {
	return m.available
}

func (m *MockSender) Notify(_ context.Context, a Alert) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, a)
	if m.err != nil {
		return "", m.err
	}
	return m.activate, nil
}

// CallCount returns the number of Notify calls.
func (m *MockSender) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Alerts)
}

// recordingRunner captures action commands instead of running them.
type recordingRunner struct {
	mu       sync.Mutex
	commands []string
	err      error
}

func (r *recordingRunner) run(command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return r.err
}

// stubGit returns fixed repository metadata.
type stubGit struct {
	info *git.Info
	dirs []string
}

func (s *stubGit) Extract(dir string) *git.Info {
	s.dirs = append(s.dirs, dir)
	return s.info
}

// mockPublisher records NATS messages.
type mockPublisher struct {
	mu         sync.Mutex
	msgs       []*nats.Msg
	publishErr error
	flushErr   error
	closed     bool
}

func (p *mockPublisher) PublishMsg(m *nats.Msg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.msgs = append(p.msgs, m)
	return nil
}

func (p *mockPublisher) FlushTimeout(time.Duration) error { return p.flushErr }

func (p *mockPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// immediateTimer fires without waiting and records requested waits.
type immediateTimer struct {
	mu    sync.Mutex
	c     chan time.Time
	waits []time.Duration
}

func newImmediateTimer() *immediateTimer {
	return &immediateTimer{c: make(chan time.Time, 1)}
}

func (t *immediateTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *immediateTimer) Stop() {}

func (t *immediateTimer) C() <-chan time.Time { return t.c }

func (t *immediateTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

func strPtr(s string) *string { return &s }
