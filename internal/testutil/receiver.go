package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one webhook delivery seen by a Receiver.
type Request struct {
	Header  http.Header
	Payload map[string]any
}

// Receiver is a webhook endpoint that records deliveries. Responses follow
// the configured status sequence; the last status repeats.
type Receiver struct {
	URL string

	mu       sync.Mutex
	statuses []int
	requests []Request
}

// NewReceiver starts a receiver closed when the test ends. With no
// statuses every request gets 200.
func NewReceiver(t *testing.T, statuses ...int) *Receiver {
	t.Helper()
	r := &Receiver{statuses: statuses}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	r.URL = srv.URL
	return r
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	r.mu.Lock()
	n := len(r.requests)
	r.requests = append(r.requests, Request{Header: req.Header.Clone(), Payload: payload})
	status := http.StatusOK
	if len(r.statuses) > 0 {
		status = r.statuses[min(n, len(r.statuses)-1)]
	}
	r.mu.Unlock()

	w.WriteHeader(status)
}

// Requests returns a copy of the deliveries received so far.
func (r *Receiver) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// WebhookConfig returns a YAML fragment enabling the webhook notifier
// against r.
func (r *Receiver) WebhookConfig() string {
	return "notifiers:\n  webhook:\n    url: " + r.URL + "\n"
}
