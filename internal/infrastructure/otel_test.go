package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/internal/config"
	"lobstat/internal/shared/testutil"
)

func TestTelemetryWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName: "lobstat-test",
		MetricsFile: filepath.Join(dir, "metrics", "lobstat.prom"),
	}, logger)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.RecordUnit(ctx, "reconstruct", StatusSucceeded, 250*time.Millisecond)
	tel.Metrics.RecordUnit(ctx, "reconstruct", StatusFailed, time.Second)
	tel.Metrics.RecordRejected(ctx, "zero_price", 3)
	tel.Metrics.RecordMissingDays(ctx, "response", 2)

	require.NoError(t, tel.WriteMetrics())
	data, err := os.ReadFile(filepath.Join(dir, "metrics", "lobstat.prom"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "units_total")
	assert.Contains(t, text, `status="failed"`)
	assert.Contains(t, text, "unit_duration_seconds")
	assert.Contains(t, text, `reason="zero_price"`)
	assert.Contains(t, text, "days_missing_total")
}

func TestTelemetryTracesToFile(t *testing.T) {
	tracesFile := filepath.Join(t.TempDir(), "traces.json")
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "lobstat-test",
		TracesEnabled: true,
		TracesFile:    tracesFile,
	}, nil)
	require.NoError(t, err)

	ctx, span := tel.Tracer.Start(context.Background(), "unit")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	AddSpanEvent(ctx, "loaded")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	data, err := os.ReadFile(tracesFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"unit"`)
}

func TestTelemetryTracingDisabled(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{ServiceName: "lobstat-test"}, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.Nil(t, tel.TracerProvider)
	ctx, span := tel.Tracer.Start(context.Background(), "unit")
	defer span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, tel.WriteMetrics(), "no metrics file configured")
}

func TestNilBatchMetrics(t *testing.T) {
	var m *BatchMetrics
	assert.NotPanics(t, func() {
		m.RecordUnit(context.Background(), "x", StatusSkipped, time.Second)
		m.RecordRejected(context.Background(), "x", 1)
	})
}
