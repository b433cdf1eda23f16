package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Paths contains every output path of one run.
// This is the single source of truth for report file locations.
type Paths struct {
	ReportsDir   string
	WorkbookPath string
}

// ResolvePaths derives the run's output paths from the report configuration.
// When TimestampedDir is set, reports go to <OutputDir>/attendance_reports_<stamp>
// so consecutive runs never overwrite each other.
func ResolvePaths(cfg *Config, now time.Time) *Paths {
	base := cfg.Report.OutputDir
	if base == "" {
		base = "."
	}

	reportsDir := base
	if cfg.Report.TimestampedDir {
		reportsDir = filepath.Join(base, "attendance_reports_"+now.Format("20060102_150405"))
	}

	return &Paths{
		ReportsDir:   reportsDir,
		WorkbookPath: filepath.Join(reportsDir, cfg.Report.WorkbookName),
	}
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// DetailCSVPath returns the per-month detail CSV path, e.g. report_2023-10.csv.
func (p *Paths) DetailCSVPath(month string) string {
	return p.GetReportPath(fmt.Sprintf("report_%s.csv", month))
}

// SummaryCSVPath returns the per-month summary CSV path, e.g. summary_2023-10.csv.
func (p *Paths) SummaryCSVPath(month string) string {
	return p.GetReportPath(fmt.Sprintf("summary_%s.csv", month))
}
