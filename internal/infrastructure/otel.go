package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"lobstat/internal/config"
	"lobstat/pkg/contracts"
)

const (
	ServiceVersion = contracts.Version
	MeterName      = "lobstat"
)

// Unit statuses recorded by BatchMetrics.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Telemetry holds the tracing and metrics providers of one process
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *BatchMetrics

	logger      *slog.Logger
	traceFile   *os.File
	metricsFile string
}

// InitializeTelemetry sets up tracing and metrics and installs them as the
// global OpenTelemetry providers. Spans are written by the stdout exporter,
// to TracesFile when set. Metrics are collected into a private Prometheus
// registry and written out by WriteMetrics.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		attribute.String("service.instance.id", instanceID()),
	)

	t := &Telemetry{logger: logger, metricsFile: cfg.MetricsFile}

	if cfg.TracesEnabled {
		if err := t.initTracing(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	} else {
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
	}

	if err := t.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", cfg.TracesEnabled),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

func (t *Telemetry) initTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	var w io.Writer = os.Stdout
	if cfg.TracesFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TracesFile), 0o755); err != nil {
			return fmt.Errorf("create traces directory: %w", err)
		}
		f, err := os.OpenFile(cfg.TracesFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open traces file: %w", err)
		}
		t.traceFile = f
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func (t *Telemetry) initMetrics(res *resource.Resource) error {
	t.Registry = prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	otel.SetMeterProvider(mp)

	t.Metrics, err = NewBatchMetrics(t.Meter)
	return err
}

// WriteMetrics writes the current metric values in Prometheus text format to
// the configured metrics file. It is a no-op when no file is configured.
func (t *Telemetry) WriteMetrics() error {
	if t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", t.metricsFile, err)
	}
	return nil
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close traces file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BatchMetrics holds the batch runner instruments
type BatchMetrics struct {
	UnitsTotal      metric.Int64Counter
	UnitDuration    metric.Float64Histogram
	RecordsRejected metric.Int64Counter
	DaysMissing     metric.Int64Counter
}

// NewBatchMetrics creates the batch instruments on meter
func NewBatchMetrics(meter metric.Meter) (*BatchMetrics, error) {
	unitsTotal, err := meter.Int64Counter(
		"units_total",
		metric.WithDescription("Total number of executed units by kind and status"),
	)
	if err != nil {
		return nil, err
	}

	unitDuration, err := meter.Float64Histogram(
		"unit_duration_seconds",
		metric.WithDescription("Unit execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recordsRejected, err := meter.Int64Counter(
		"records_rejected_total",
		metric.WithDescription("Total number of input records rejected by the normalizer"),
	)
	if err != nil {
		return nil, err
	}

	daysMissing, err := meter.Int64Counter(
		"days_missing_total",
		metric.WithDescription("Total number of business days without input"),
	)
	if err != nil {
		return nil, err
	}

	return &BatchMetrics{
		UnitsTotal:      unitsTotal,
		UnitDuration:    unitDuration,
		RecordsRejected: recordsRejected,
		DaysMissing:     daysMissing,
	}, nil
}

// RecordUnit records one finished unit
func (m *BatchMetrics) RecordUnit(ctx context.Context, kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	)
	m.UnitsTotal.Add(ctx, 1, attrs)
	m.UnitDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRejected adds n rejected records for reason
func (m *BatchMetrics) RecordRejected(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsRejected.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordMissingDays adds n missing business days for a unit kind
func (m *BatchMetrics) RecordMissingDays(ctx context.Context, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DaysMissing.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

func instanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
