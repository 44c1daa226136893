package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// Notifier is a delivery sink.
type Notifier interface {
	// IsEnabled depends only on configuration and platform.
	IsEnabled() bool
	// Name is stable and used in logs and results.
	Name() string
	// Send delivers ev. It always returns a Result.
	Send(ctx context.Context, ev hook.Event) Result
}

// Result is the outcome of one Send.
type Result struct {
	Success  bool
	Notifier string
	Err      error
	// Response carries sink-specific metadata on success.
	Response *Response
	// Attempts counts delivery tries, including the successful one.
	Attempts int
}

// Response is metadata returned by a successful HTTP delivery.
type Response struct {
	Status     int    `json:"status"`
	StatusText string `json:"status_text"`
}

func failure(name string, attempts int, err error) Result {
	return Result{Notifier: name, Err: err, Attempts: attempts}
}

func success(name string, attempts int, resp *Response) Result {
	return Result{Success: true, Notifier: name, Attempts: attempts, Response: resp}
}

// Options injects collaborators into the notifiers built by All.
type Options struct {
	Webhook []WebhookOption
	Desktop []DesktopOption
	NATS    []NATSOption
}

// All returns every notifier known for cfg, enabled or not, in a fixed
// order. The NATS notifier publishes the same payload shape as the webhook.
func All(cfg *config.Config, logger *zap.Logger, opts Options) []Notifier {
	payloadCfg := config.PayloadConfig{Include: config.DefaultInclude}
	if cfg.Notifiers.Webhook != nil {
		payloadCfg = cfg.Notifiers.Webhook.Payload
	}
	builder := NewPayloadBuilder(payloadCfg)

	return []Notifier{
		NewWebhookNotifier(cfg.Notifiers.Webhook, logger, append([]WebhookOption{WithPayloadBuilder(builder)}, opts.Webhook...)...),
		NewDesktopNotifier(cfg.Notifiers.Desktop, logger, opts.Desktop...),
		NewNATSNotifier(cfg.Notifiers.NATS, logger, append([]NATSOption{WithNATSPayloadBuilder(builder)}, opts.NATS...)...),
	}
}
