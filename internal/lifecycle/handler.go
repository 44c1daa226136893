package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariel-frischer/webhook-notifier/internal/config"
	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
	"github.com/ariel-frischer/webhook-notifier/internal/telemetry"
	"github.com/ariel-frischer/webhook-notifier/internal/transcript"
)

// Handler processes hook inputs.
type Handler struct {
	cfg       *config.Config
	logger    *zap.Logger
	notifiers []notify.Notifier
	extractor transcript.Extractor
	recorder  telemetry.Recorder
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotifiers replaces the notifiers built from the config.
func WithNotifiers(n ...notify.Notifier) Option {
	return func(h *Handler) { h.notifiers = n }
}

// WithExtractor replaces the transcript extractor.
func WithExtractor(e transcript.Extractor) Option {
	return func(h *Handler) { h.extractor = e }
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r telemetry.Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// NewHandler returns a handler for cfg.
func NewHandler(cfg *config.Config, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		cfg:       cfg,
		logger:    logger,
		extractor: transcript.NewExtractor(),
		recorder:  telemetry.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.notifiers == nil {
		h.notifiers = notify.All(cfg, logger, notify.Options{})
	}
	return h
}

// Handle runs the full pipeline for in. It always returns an output with
// Continue set.
func (h *Handler) Handle(ctx context.Context, in *hook.Input) (out hook.Output) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("hook handling panicked", zap.Any("panic", r))
			out = hook.ContinueOutput()
		}
	}()

	if in == nil {
		h.logger.Error("hook handling failed", zap.Error(fmt.Errorf("%w: input", hook.ErrMissingField)))
		return hook.ContinueOutput()
	}

	h.logger.Info("processing hook event",
		zap.String("event", string(in.HookEventName)),
		zap.String("session_id", in.SessionID),
	)

	if err := in.Validate(); err != nil {
		h.logger.Error("hook handling failed", zap.Error(err))
		return hook.ContinueOutput()
	}

	ev, ok := h.Classify(in)
	if !ok {
		h.recorder.RecordEvent(ctx, "dropped")
		return hook.ContinueOutput()
	}
	h.recorder.RecordEvent(ctx, string(ev.Kind()))

	deliveries := h.Dispatch(ctx, ev)
	return hook.Summarize(countSucceeded(deliveries), len(deliveries))
}

// Classify turns a validated input into an event. It reports false for
// unsupported or disabled event types.
func (h *Handler) Classify(in *hook.Input) (hook.Event, bool) {
	switch in.HookEventName {
	case hook.EventNotification:
		events := h.cfg.Events.Notification
		if !events.Enabled {
			h.logger.Debug("notification events are disabled")
			return hook.Event{}, false
		}
		return hook.NewNotificationEvent(*in, h.extractContext(in)), true

	case hook.EventStop, hook.EventSessionEnd:
		if !h.cfg.Events.SessionEnd.Enabled {
			h.logger.Debug("session end events are disabled")
			return hook.Event{}, false
		}
		return hook.NewSessionEndEvent(*in), true

	default:
		h.logger.Warn("unsupported event type", zap.String("event", string(in.HookEventName)))
		return hook.Event{}, false
	}
}

func (h *Handler) extractContext(in *hook.Input) *hook.Context {
	events := h.cfg.Events.Notification
	if !events.ExtractContext || in.TranscriptPath == "" {
		return nil
	}

	ctx, err := h.extractor.Extract(in.TranscriptPath, events.ContextLength)
	if err != nil {
		h.logger.Warn("context extraction failed", zap.String("transcript_path", in.TranscriptPath), zap.Error(err))
		return nil
	}
	if ctx == nil {
		h.logger.Debug("no context extracted, using basic notification")
		return nil
	}
	h.logger.Debug("context extracted",
		zap.String("message_type", string(ctx.MessageType)),
		zap.Int("length", len([]rune(ctx.LastMessage))),
	)
	return ctx
}

// Dispatch sends ev to every enabled notifier and logs each outcome.
func (h *Handler) Dispatch(ctx context.Context, ev hook.Event) []Delivery {
	var enabled []notify.Notifier
	var names []string
	for _, n := range h.notifiers {
		if n.IsEnabled() {
			enabled = append(enabled, n)
			names = append(names, n.Name())
		}
	}
	if len(enabled) == 0 {
		h.logger.Warn("no notifiers are enabled")
		return nil
	}

	h.logger.Info("sending notifications", zap.Strings("notifiers", names))
	deliveries := fanOut(ctx, enabled, ev)

	for _, d := range deliveries {
		h.recorder.RecordDelivery(ctx, d.Notifier, d.Success, d.Attempts, d.Duration)
		if d.Success {
			h.logger.Info("notifier succeeded", zap.String("notifier", d.Notifier), zap.Duration("duration", d.Duration))
			continue
		}
		h.logger.Error("notifier failed", zap.String("notifier", d.Notifier), zap.Error(d.Err))
	}
	return deliveries
}
