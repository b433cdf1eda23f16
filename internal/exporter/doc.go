// Package exporter writes attendance month reports to disk.
//
// ReportExporter is the entry point. For each month it writes a detail CSV
// (report_YYYY-MM.csv) and a summary CSV (summary_YYYY-MM.csv), then one
// workbook with, per month, a detail sheet (October-2023), a summary sheet
// (Summary-October-2023) and optionally a day-grid sheet (Grid-October-2023),
// followed by an overall Summary sheet.
//
// Lower-level pieces:
//
// CSVWriter: writes headers and records, optionally with a UTF-8 BOM so
// spreadsheet applications detect the encoding.
//
// WorkbookWriter: builds the workbook with excelize.
//
// Formatter: renders dates, punch times and numbers as cells.
//
// Example usage:
//
//	exp := exporter.NewReportExporter(paths, cfg.Report, logger)
//	result, err := exp.Export(ctx, reports)
//	if err != nil {
//	    // an OUTPUT error carries the failing path and the files already written
//	}
package exporter
