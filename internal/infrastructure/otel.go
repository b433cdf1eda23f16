package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"attendcli/internal/config"
	"attendcli/pkg/contracts"
)

const MeterName = "attendcli"

// Telemetry holds the tracer and meter of one run. With tracing and metrics
// disabled both are no-ops and Shutdown does nothing.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter

	registry    *prometheus.Registry
	metricsFile string
	traceFile   *os.File
	logger      *slog.Logger
}

// InitializeTelemetry sets up tracing (stdouttrace into a file) and metrics
// (OTel meter exported into a private Prometheus registry) per configuration.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		logger: logger,
	}
	if !cfg.TracingEnabled && !cfg.MetricsEnabled {
		return t, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
	)

	if cfg.TracingEnabled {
		if err := t.initializeTracing(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := t.initializeMetrics(cfg, res); err != nil {
			t.closeTraceFile()
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.Info("Telemetry initialized",
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	return t, nil
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	file, err := openAppendFile(cfg.TraceFile)
	if err != nil {
		return err
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	t.traceFile = file
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	return nil
}

func (t *Telemetry) initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.registry = registry
	t.metricsFile = cfg.MetricsFile
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))
	return nil
}

// Shutdown flushes spans and writes the metrics textfile. Safe on a disabled Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.MeterProvider != nil {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, err)
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics textfile: %w", err))
		} else {
			t.logger.Debug("Metrics textfile written", slog.String("path", t.metricsFile))
		}
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		t.closeTraceFile()
	}

	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() {
	if t.traceFile != nil {
		t.traceFile.Close()
		t.traceFile = nil
	}
}

// RunMetrics are the counters of one report run.
type RunMetrics struct {
	LinesRead         metric.Int64Counter
	PunchesParsed     metric.Int64Counter
	LinesSkipped      metric.Int64Counter
	EncodingFallbacks metric.Int64Counter
	MonthsReported    metric.Int64Counter
	MonthGaps         metric.Int64Counter
	StageDuration     metric.Float64Histogram
}

// NewRunMetrics creates the run instruments on meter.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	var (
		m   RunMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.LinesRead, "attendance_lines_read", "Data lines read from the device log"},
		{&m.PunchesParsed, "attendance_punches_parsed", "Punch records parsed"},
		{&m.LinesSkipped, "attendance_lines_skipped", "Malformed lines skipped"},
		{&m.EncodingFallbacks, "attendance_encoding_fallbacks", "Encoding candidates rejected before decoding succeeded"},
		{&m.MonthsReported, "attendance_months_reported", "Month sections written"},
		{&m.MonthGaps, "attendance_month_gaps", "Requested months without punches"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.StageDuration, err = meter.Float64Histogram(
		"attendance_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// StageAttr labels a stage measurement.
func StageAttr(stage string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("stage", stage))
}

func openAppendFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return file, nil
}
