package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
)

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{}, nil)
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Meter)

	metrics, err := NewRunMetrics(tel.Meter)
	require.NoError(t, err)
	metrics.LinesRead.Add(context.Background(), 3)

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitializeTelemetry_MetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		ServiceName:    "attendance-report-test",
		MetricsEnabled: true,
		MetricsFile:    filepath.Join(dir, "metrics", "run.prom"),
	}

	tel, err := InitializeTelemetry(cfg, nil)
	require.NoError(t, err)

	metrics, err := NewRunMetrics(tel.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.LinesRead.Add(ctx, 11)
	metrics.LinesSkipped.Add(ctx, 1)
	metrics.StageDuration.Record(ctx, 0.25, StageAttr("parse"))

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "attendance_lines_read_total")
	assert.Contains(t, text, "attendance_lines_skipped_total")
	assert.Contains(t, text, "attendance_stage_duration_seconds")
}

func TestInitializeTelemetry_TraceFile(t *testing.T) {
	cfg := config.TelemetryConfig{
		ServiceName:    "attendance-report-test",
		TracingEnabled: true,
		TraceFile:      filepath.Join(t.TempDir(), "traces.json"),
		SampleRatio:    1,
	}

	tel, err := InitializeTelemetry(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	_, span := tel.Tracer.Start(context.Background(), "parse")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"parse"`)
}
