package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"attendcli/internal/config"
	"attendcli/internal/dataprocessing"
	"attendcli/internal/errors"
	"attendcli/internal/exporter"
	"attendcli/internal/infrastructure"
	"attendcli/internal/validation"
	"attendcli/pkg/contracts/domain"
)

// Runner wires the pipeline stages: validate, decode, parse, build sessions,
// resolve months, aggregate and export. It owns logging of diagnostics,
// tracing, metrics and error classification.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.RunMetrics
	validator  *validation.FileValidator
	parser     *dataprocessing.Parser
	aggregator *dataprocessing.Aggregator
	now        func() time.Time
}

// Request is one non-interactive run.
type Request struct {
	File      string
	Selection dataprocessing.Selection
}

// Dataset is a parsed input file, ready for month selection.
type Dataset struct {
	Path        string
	Encoding    string
	LinesRead   int
	Records     []domain.PunchRecord
	Diagnostics []domain.Diagnostic
	Sessions    *dataprocessing.Sessions
	Stats       []dataprocessing.MonthStat
}

// Months returns the months with punches, ascending.
func (d *Dataset) Months() []domain.Month {
	return d.Sessions.Months()
}

// Result describes a completed run.
type Result struct {
	// Quit is set when the operator left the month menu without selecting.
	Quit    bool
	Months  []domain.Month
	Gaps    []domain.Month
	Reports []domain.MonthReport
	Paths   *config.Paths
	Files   []string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock replaces the clock used to name the timestamped output directory.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner builds a Runner. A nil telemetry disables tracing and metrics.
func NewRunner(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		var err error
		if telemetry, err = infrastructure.InitializeTelemetry(config.TelemetryConfig{}, logger); err != nil {
			return nil, err
		}
	}

	metrics, err := infrastructure.NewRunMetrics(telemetry.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create run metrics: %w", err)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateWorkbookName(cfg.Report.WorkbookName); err != nil {
		return nil, err
	}

	parser, err := dataprocessing.NewParser(cfg.Input)
	if err != nil {
		return nil, err
	}
	aggregator, err := dataprocessing.NewAggregator(cfg.Policy, logger)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:        cfg,
		logger:     infrastructure.WithComponent(logger, "runner"),
		tracer:     telemetry.Tracer,
		metrics:    metrics,
		validator:  validator,
		parser:     parser,
		aggregator: aggregator,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run loads the file and writes the reports for the selection.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)

	ds, err := r.Load(ctx, req.File)
	if err != nil {
		return nil, err
	}
	return r.Report(ctx, ds, req.Selection)
}

// Load validates, decodes and parses the input file and builds the sessions.
// Skipped lines and encoding fallbacks are logged; only an unreadable or
// undecodable file, or one without any valid punch, is an error.
func (r *Runner) Load(ctx context.Context, path string) (*Dataset, error) {
	ds := &Dataset{Path: path}

	err := r.stage(ctx, "read", func(ctx context.Context) error {
		if err := r.validator.ValidateInputFile(path); err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.NewInputError(path, fmt.Sprintf("failed to read %s", path), err)
		}

		decoded, err := dataprocessing.Decode(raw, r.cfg.Input.Encodings)
		if err != nil {
			if appErr, ok := errors.As(err); ok {
				appErr.WithContext("path", path)
			}
			return err
		}
		r.metrics.EncodingFallbacks.Add(ctx, int64(len(decoded.Rejected)))
		for _, d := range decoded.Diagnostics {
			r.logDiagnostic(ctx, d, slog.String("file", path), slog.Any("rejected", decoded.Rejected))
		}
		ds.Encoding = decoded.Encoding

		parsed := r.parser.Parse(decoded.Text)
		ds.Records = parsed.Records
		ds.LinesRead = parsed.LinesRead
		ds.Diagnostics = append(decoded.Diagnostics, parsed.Diagnostics...)

		r.metrics.LinesRead.Add(ctx, int64(parsed.LinesRead))
		r.metrics.PunchesParsed.Add(ctx, int64(len(parsed.Records)))
		r.metrics.LinesSkipped.Add(ctx, int64(len(parsed.Diagnostics)))
		for _, d := range parsed.Diagnostics {
			r.logDiagnostic(ctx, d, slog.String("file", path))
		}

		r.logger.InfoContext(ctx, "Input file parsed",
			slog.String("file", path),
			slog.String("encoding", decoded.Encoding),
			slog.Int("lines_read", parsed.LinesRead),
			slog.Int("records", len(parsed.Records)),
			slog.Int("skipped", len(parsed.Diagnostics)))

		if len(parsed.Records) == 0 {
			return errors.NewInputError(path, fmt.Sprintf("no valid punch records in %s", path), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "sessions", func(ctx context.Context) error {
		sessions, err := dataprocessing.BuildSessions(ctx, ds.Records, r.cfg.Policy)
		if err != nil {
			return err
		}
		ds.Sessions = sessions
		ds.Stats = dataprocessing.MonthStats(ds.Records, r.cfg.Policy.DayCutoff)

		r.logger.InfoContext(ctx, "Sessions built",
			slog.Int("employees", len(sessions.Employees())),
			slog.Int("employee_days", sessions.Len()),
			slog.Any("months", sessions.Months()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// Report resolves the selection against the dataset, aggregates and writes
// the reports. A requested month without punches is logged and reported
// with all-Absent rows.
func (r *Runner) Report(ctx context.Context, ds *Dataset, sel dataprocessing.Selection) (*Result, error) {
	result := &Result{}

	res, err := dataprocessing.ResolveMonths(sel, ds.Months())
	if err != nil {
		return nil, err
	}
	if res.Quit {
		r.logger.InfoContext(ctx, "No months selected, nothing to report")
		result.Quit = true
		return result, nil
	}
	for _, token := range res.Ignored {
		r.logger.WarnContext(ctx, "Ignored invalid month selection", slog.String("token", token))
	}
	result.Months, result.Gaps = res.Months, res.Gaps
	if len(result.Months) == 0 {
		return nil, errors.NewValidationError("no months to report")
	}

	err = r.stage(ctx, "aggregate", func(ctx context.Context) error {
		reports, diagnostics, err := r.aggregator.Aggregate(ctx, ds.Sessions, result.Months)
		if err != nil {
			return err
		}
		for _, d := range diagnostics {
			r.logDiagnostic(ctx, d)
		}
		r.metrics.MonthGaps.Add(ctx, int64(len(diagnostics)))
		result.Reports = reports
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, "export", func(ctx context.Context) error {
		result.Paths = config.ResolvePaths(r.cfg, r.now())
		if err := r.validator.ValidateOutputDirectory(result.Paths.ReportsDir); err != nil {
			return err
		}

		exp := exporter.NewReportExporter(result.Paths, r.cfg.Report, r.logger)
		exported, err := exp.Export(ctx, result.Reports)
		if exported != nil {
			result.Files = exported.Files
		}
		if err != nil {
			return err
		}
		r.metrics.MonthsReported.Add(ctx, int64(len(result.Reports)))
		return nil
	})
	if err != nil {
		return result, err
	}

	r.logger.InfoContext(ctx, "Reports generated",
		slog.String("directory", result.Paths.ReportsDir),
		slog.Int("months", len(result.Months)),
		slog.Int("month_gaps", len(result.Gaps)),
		slog.Int("files", len(result.Files)))
	return result, nil
}

// stage runs fn in a span, records its duration and turns a context
// cancellation into a CANCELED error.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCanceledError(name, err)
	}

	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("run_id", infrastructure.GetRunID(ctx))))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	r.metrics.StageDuration.Record(ctx, time.Since(start).Seconds(), infrastructure.StageAttr(name))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.IsType(err, errors.ErrTypeCanceled) {
			err = errors.NewCanceledError(name, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *Runner) logDiagnostic(ctx context.Context, d domain.Diagnostic, attrs ...any) {
	args := append([]any{slog.String("kind", string(d.Kind))}, attrs...)
	if appErr, ok := errors.As(d.Err); ok {
		args = append(args, slog.String("error_type", string(appErr.Type)))
	}
	switch d.Kind {
	case domain.DiagnosticSkippedLine:
		args = append(args,
			slog.Int("line", d.Line),
			slog.String("raw_line", d.RawLine),
			slog.String("reason", d.Reason))
		r.logger.WarnContext(ctx, "Skipped malformed line", args...)
	case domain.DiagnosticEncodingFallback:
		r.logger.WarnContext(ctx, "Encoding fallback", append(args, slog.String("reason", d.Reason))...)
	case domain.DiagnosticMonthGap:
		r.logger.WarnContext(ctx, "Requested month has no punches", append(args, slog.String("reason", d.Reason))...)
	default:
		r.logger.WarnContext(ctx, d.Reason, args...)
	}
}
