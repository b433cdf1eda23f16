package exporter

import (
	"context"
	"log/slog"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// ReportExporter writes month reports to the per-month CSV files and the workbook.
type ReportExporter struct {
	paths    *config.Paths
	cfg      config.ReportConfig
	format   *Formatter
	csv      *CSVWriter
	workbook *WorkbookWriter
	logger   *slog.Logger
}

// ExportResult lists the files written, in write order.
type ExportResult struct {
	Files []string
}

// NewReportExporter creates an exporter writing under paths.ReportsDir.
func NewReportExporter(paths *config.Paths, cfg config.ReportConfig, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	format := NewFormatter(cfg)
	return &ReportExporter{
		paths:    paths,
		cfg:      cfg,
		format:   format,
		csv:      NewCSVWriter(paths, logger),
		workbook: NewWorkbookWriter(format, cfg.GridSheets, logger),
		logger:   logger,
	}
}

// Export writes, per month, report_YYYY-MM.csv and summary_YYYY-MM.csv (when
// CSV output is enabled), then the workbook. The first failure aborts with an
// OUTPUT error naming the path and the files already written.
func (e *ReportExporter) Export(ctx context.Context, reports []domain.MonthReport) (*ExportResult, error) {
	result := &ExportResult{}

	if e.cfg.WriteCSV {
		for _, report := range reports {
			if err := ctx.Err(); err != nil {
				return result, errors.NewCanceledError("export", err)
			}

			month := report.Month.String()
			if err := e.writeDetail(report); err != nil {
				return result, errors.NewOutputError(e.paths.DetailCSVPath(month), result.Files, err)
			}
			result.Files = append(result.Files, e.paths.DetailCSVPath(month))

			if err := e.writeSummary(report); err != nil {
				return result, errors.NewOutputError(e.paths.SummaryCSVPath(month), result.Files, err)
			}
			result.Files = append(result.Files, e.paths.SummaryCSVPath(month))

			e.logger.InfoContext(ctx, "Month report written",
				slog.String("month", month),
				slog.Bool("has_data", report.HasData),
				slog.Int("rows", len(report.Days)),
				slog.Int("employees", len(report.Summaries)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, errors.NewCanceledError("export", err)
	}
	if err := e.workbook.Write(e.paths.WorkbookPath, reports); err != nil {
		return result, errors.NewOutputError(e.paths.WorkbookPath, result.Files, err)
	}
	result.Files = append(result.Files, e.paths.WorkbookPath)

	e.logger.InfoContext(ctx, "Workbook written",
		slog.String("path", e.paths.WorkbookPath),
		slog.Int("months", len(reports)))

	return result, nil
}

func (e *ReportExporter) writeDetail(report domain.MonthReport) error {
	rows := make([][]string, 0, len(report.Days))
	for _, day := range report.Days {
		rows = append(rows, e.format.DetailRow(day))
	}
	return e.csv.WriteCSV(e.paths.DetailCSVPath(report.Month.String()), WriteOptions{
		Headers:   DetailHeaders,
		Records:   rows,
		BOMPrefix: e.cfg.CSVBOM,
	})
}

func (e *ReportExporter) writeSummary(report domain.MonthReport) error {
	rows := make([][]string, 0, len(report.Summaries))
	for _, s := range report.Summaries {
		rows = append(rows, e.format.SummaryRow(s))
	}
	return e.csv.WriteCSV(e.paths.SummaryCSVPath(report.Month.String()), WriteOptions{
		Headers:   SummaryHeaders,
		Records:   rows,
		BOMPrefix: e.cfg.CSVBOM,
	})
}
