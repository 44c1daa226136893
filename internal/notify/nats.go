package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/build"
	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// NATSName is the NATS notifier's stable name.
const NATSName = "nats"

// ErrNATSNotConfigured is reported when url or subject is missing.
var ErrNATSNotConfigured = errors.New("nats url and subject are required")

// Publisher is the subset of *nats.Conn the notifier uses.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Dialer opens a Publisher.
type Dialer func(url string, timeout time.Duration) (Publisher, error)

// NATSNotifier publishes the webhook payload to a NATS subject.
type NATSNotifier struct {
	cfg     config.NATSConfig
	dial    Dialer
	payload *PayloadBuilder
	logger  *zap.Logger
}

// NATSOption configures a NATSNotifier.
type NATSOption func(*NATSNotifier)

// WithDialer replaces nats.Connect.
func WithDialer(d Dialer) NATSOption {
	return func(n *NATSNotifier) { n.dial = d }
}

// WithNATSPayloadBuilder sets the payload builder, normally shared with the
// webhook notifier.
func WithNATSPayloadBuilder(b *PayloadBuilder) NATSOption {
	return func(n *NATSNotifier) { n.payload = b }
}

// NewNATSNotifier returns a notifier for cfg.
func NewNATSNotifier(cfg config.NATSConfig, logger *zap.Logger, opts ...NATSOption) *NATSNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &NATSNotifier{
		cfg:    cfg,
		dial:   connect,
		logger: logger.Named(NATSName),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.payload == nil {
		n.payload = NewPayloadBuilder(config.PayloadConfig{Include: config.DefaultInclude})
	}
	return n
}

func connect(url string, timeout time.Duration) (Publisher, error) {
	return nats.Connect(url,
		nats.Name("webhook-notifier"),
		nats.Timeout(timeout),
		nats.NoReconnect(),
	)
}

func (n *NATSNotifier) Name() string { return NATSName }

func (n *NATSNotifier) IsEnabled() bool { return n.cfg.Enabled }

// Send publishes once and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Send(_ context.Context, ev hook.Event) Result {
	if n.cfg.URL == "" || n.cfg.Subject == "" {
		return failure(NATSName, 0, ErrNATSNotConfigured)
	}

	body, err := json.Marshal(n.payload.Build(ev))
	if err != nil {
		return failure(NATSName, 0, fmt.Errorf("failed to encode payload: %w", err))
	}

	timeout := time.Duration(n.cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultNATSTimeout) * time.Second
	}

	conn, err := n.dial(n.cfg.URL, timeout)
	if err != nil {
		n.logger.Error("nats connect failed", zap.String("url", n.cfg.URL), zap.Error(err))
		return failure(NATSName, 1, fmt.Errorf("failed to connect to %s: %w", n.cfg.URL, err))
	}
	defer conn.Close()

	msg := nats.NewMsg(n.cfg.Subject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())
	msg.Header.Set("Event", string(ev.Kind()))
	msg.Header.Set("User-Agent", build.UserAgent())

	if err := conn.PublishMsg(msg); err != nil {
		n.logger.Error("nats publish failed", zap.String("subject", n.cfg.Subject), zap.Error(err))
		return failure(NATSName, 1, fmt.Errorf("failed to publish: %w", err))
	}
	if err := conn.FlushTimeout(timeout); err != nil {
		n.logger.Error("nats flush failed", zap.String("subject", n.cfg.Subject), zap.Error(err))
		return failure(NATSName, 1, fmt.Errorf("failed to flush: %w", err))
	}

	n.logger.Info("nats message published", zap.String("subject", n.cfg.Subject))
	return success(NATSName, 1, nil)
}
