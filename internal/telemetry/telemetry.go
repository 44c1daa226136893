// Package telemetry records delivery metrics. When telemetry is disabled a
// no-op recorder is used; otherwise metrics are exported over OTLP/gRPC and
// flushed when the recorder is closed.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ariel-frischer/webhook-notifier/internal/build"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	// RecordEvent counts a hook event by kind ("notification", "session_end",
	// or "dropped").
	RecordEvent(ctx context.Context, kind string)
	// RecordDelivery records one notifier's outcome.
	RecordDelivery(ctx context.Context, notifier string, success bool, attempts int, elapsed time.Duration)
	// Close flushes pending data.
	Close(ctx context.Context) error
}

// Config holds exporter settings.
type Config struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// New returns an OTLP-backed recorder when cfg is enabled, else a no-op.
func New(ctx context.Context, cfg Config) (Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return Nop(), nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return newExporter(ctx, cfg.ServiceName, sdkmetric.NewPeriodicReader(exp))
}

// Exporter records metrics through an OpenTelemetry meter provider.
type Exporter struct {
	provider   *sdkmetric.MeterProvider
	events     metric.Int64Counter
	deliveries metric.Int64Counter
	attempts   metric.Int64Histogram
	duration   metric.Float64Histogram
}

func newExporter(ctx context.Context, serviceName string, reader sdkmetric.Reader) (*Exporter, error) {
	if serviceName == "" {
		serviceName = "webhook-notifier"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(build.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}
	if e.events, err = meter.Int64Counter(
		"webhook_notifier_events_total",
		metric.WithDescription("Hook events received, by kind"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}
	if e.deliveries, err = meter.Int64Counter(
		"webhook_notifier_deliveries_total",
		metric.WithDescription("Notifier deliveries, by notifier and outcome"),
		metric.WithUnit("{delivery}"),
	); err != nil {
		return nil, fmt.Errorf("creating deliveries counter: %w", err)
	}
	if e.attempts, err = meter.Int64Histogram(
		"webhook_notifier_delivery_attempts",
		metric.WithDescription("Attempts made per delivery"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("creating attempts histogram: %w", err)
	}
	if e.duration, err = meter.Float64Histogram(
		"webhook_notifier_delivery_duration_seconds",
		metric.WithDescription("Wall time per delivery including retries"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return e, nil
}

func (e *Exporter) RecordEvent(ctx context.Context, kind string) {
	e.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", kind)))
}

func (e *Exporter) RecordDelivery(ctx context.Context, notifier string, success bool, attempts int, elapsed time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	opt := metric.WithAttributes(
		attribute.String("notifier", notifier),
		attribute.String("outcome", outcome),
	)
	e.deliveries.Add(ctx, 1, opt)
	e.attempts.Record(ctx, int64(attempts), opt)
	e.duration.Record(ctx, elapsed.Seconds(), opt)
}

// Close shuts down the provider, flushing pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

type nopRecorder struct{}

// Nop returns a recorder that discards everything.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordEvent(context.Context, string)                              {}
func (nopRecorder) RecordDelivery(context.Context, string, bool, int, time.Duration) {}
func (nopRecorder) Close(context.Context) error                                      { return nil }
