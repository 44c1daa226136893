package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/build"
	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/retry"
)

// WebhookName is the webhook notifier's stable name.
const WebhookName = "webhook"

// DeliveryHeader carries a unique id per Send, shared by all attempts.
const DeliveryHeader = "X-Webhook-Delivery"

var (
	// ErrWebhookNotConfigured is reported when the webhook section is absent.
	ErrWebhookNotConfigured = errors.New("webhook configuration not found")
	// ErrWebhookURLRequired is reported when the webhook has no URL.
	ErrWebhookURLRequired = errors.New("webhook URL is required")
)

// HTTPStatusError is a non-2xx webhook response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// WebhookNotifier POSTs event payloads to a configured URL.
type WebhookNotifier struct {
	cfg       *config.WebhookConfig
	client    *http.Client
	logger    *zap.Logger
	payload   *PayloadBuilder
	retryOpts []retry.Option
	newID     func() string
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) { w.client = c }
}

// WithPayloadBuilder replaces the builder derived from the config.
func WithPayloadBuilder(b *PayloadBuilder) WebhookOption {
	return func(w *WebhookNotifier) { w.payload = b }
}

// WithRetryOptions passes options through to retry.Do.
func WithRetryOptions(opts ...retry.Option) WebhookOption {
	return func(w *WebhookNotifier) { w.retryOpts = append(w.retryOpts, opts...) }
}

// NewWebhookNotifier returns a notifier for cfg. cfg may be nil, in which
// case the notifier is disabled.
func NewWebhookNotifier(cfg *config.WebhookConfig, logger *zap.Logger, opts ...WebhookOption) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger.Named(WebhookName),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.payload == nil {
		var pc config.PayloadConfig
		if cfg != nil {
			pc = cfg.Payload
		}
		w.payload = NewPayloadBuilder(pc)
	}
	return w
}

func (w *WebhookNotifier) Name() string { return WebhookName }

func (w *WebhookNotifier) IsEnabled() bool {
	return w.cfg != nil && w.cfg.Enabled
}

// Send builds the payload and delivers it, retrying per the config.
func (w *WebhookNotifier) Send(ctx context.Context, ev hook.Event) Result {
	if w.cfg == nil {
		return failure(WebhookName, 0, ErrWebhookNotConfigured)
	}
	if w.cfg.URL == "" {
		return failure(WebhookName, 0, ErrWebhookURLRequired)
	}

	body, err := json.Marshal(w.payload.Build(ev))
	if err != nil {
		return failure(WebhookName, 0, fmt.Errorf("failed to encode payload: %w", err))
	}
	w.logger.Debug("webhook payload", zap.ByteString("payload", body))

	policy := retry.Policy{
		Enabled:     w.cfg.Retry.Enabled,
		MaxAttempts: w.cfg.Retry.MaxAttempts,
		Strategy:    retry.Strategy(w.cfg.Retry.Backoff),
	}
	deliveryID := w.newID()

	var (
		resp     *Response
		attempts int
	)
	opts := append([]retry.Option{
		retry.WithNotify(func(err error, attempt int, wait time.Duration) {
			w.logger.Warn("webhook attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", policy.Attempts()),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	}, w.retryOpts...)

	err = retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		attempts = attempt
		w.logger.Debug("webhook attempt", zap.Int("attempt", attempt), zap.Int("max_attempts", policy.Attempts()))
		r, err := w.post(ctx, deliveryID, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, opts...)
	if err != nil {
		w.logger.Error("webhook send failed", zap.Int("attempts", attempts), zap.Error(err))
		return failure(WebhookName, attempts, err)
	}

	w.logger.Info("webhook sent", zap.Int("status", resp.Status), zap.Int("attempts", attempts))
	return success(WebhookName, attempts, resp)
}

// post performs one attempt bounded by the configured timeout.
func (w *WebhookNotifier) post(ctx context.Context, deliveryID string, body []byte) (*Response, error) {
	timeout := time.Duration(w.cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultWebhookTimeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", build.UserAgent())
	req.Header.Set(DeliveryHeader, deliveryID)
	for k, v := range w.cfg.Headers {
		req.Header.Set(k, v)
	}

	res, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Status: statusText(res)}
	}
	return &Response{Status: res.StatusCode, StatusText: statusText(res)}, nil
}

// statusText strips the numeric prefix net/http puts in Status.
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, fmt.Sprintf("%d", res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}
