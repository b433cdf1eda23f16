package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePaths(t *testing.T) {
	now := time.Date(2023, 11, 2, 14, 30, 5, 0, time.UTC)

	tests := []struct {
		name        string
		outputDir   string
		timestamped bool
		wantReports string
	}{
		{
			name:        "timestamped run directory",
			outputDir:   "out",
			timestamped: true,
			wantReports: filepath.Join("out", "attendance_reports_20231102_143005"),
		},
		{
			name:        "flat output directory",
			outputDir:   "out",
			wantReports: "out",
		},
		{
			name:        "empty output directory defaults to cwd",
			wantReports: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Report.OutputDir = tt.outputDir
			cfg.Report.TimestampedDir = tt.timestamped

			paths := ResolvePaths(cfg, now)

			assert.Equal(t, tt.wantReports, paths.ReportsDir)
			assert.Equal(t, filepath.Join(tt.wantReports, "attendance_report.xlsx"), paths.WorkbookPath)
			assert.Equal(t, filepath.Join(tt.wantReports, "report_2023-10.csv"), paths.DetailCSVPath("2023-10"))
			assert.Equal(t, filepath.Join(tt.wantReports, "summary_2023-10.csv"), paths.SummaryCSVPath("2023-10"))
		})
	}
}

func TestPaths_GetReportPath_Absolute(t *testing.T) {
	paths := &Paths{ReportsDir: "reports"}
	abs := filepath.Join(t.TempDir(), "x.csv")

	assert.Equal(t, abs, paths.GetReportPath(abs))
	assert.Equal(t, filepath.Join("reports", "x.csv"), paths.GetReportPath("x.csv"))
}
