package exporter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/internal/shared/testutil"
)

func TestReportExporter_Export(t *testing.T) {
	_, paths := setupTestEnv(t)
	logger, handler := testutil.NewTestLogger(t)

	exp := NewReportExporter(paths, config.Default().Report, logger)
	result, err := exp.Export(context.Background(), sampleReports())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(paths.ReportsDir, "report_2023-10.csv"),
		filepath.Join(paths.ReportsDir, "summary_2023-10.csv"),
		filepath.Join(paths.ReportsDir, "report_2023-11.csv"),
		filepath.Join(paths.ReportsDir, "summary_2023-11.csv"),
		paths.WorkbookPath,
	}, result.Files)

	bom, rows := readCSV(t, paths.DetailCSVPath("2023-10"))
	assert.True(t, bom)
	require.Len(t, rows, 63)
	assert.Equal(t, DetailHeaders, rows[0])

	_, rows = readCSV(t, paths.SummaryCSVPath("2023-11"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"00000001", "30", "0.00", "30", "0.00", "Alice", "0", "0", "0", "0"}, rows[1])

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Workbook written")
	assert.Len(t, handler.GetRecordsByMessage("Month report written"), 2)
}

func TestReportExporter_Idempotent(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewReportExporter(paths, config.Default().Report, nil)

	_, err := exp.Export(context.Background(), sampleReports())
	require.NoError(t, err)
	first, err := os.ReadFile(paths.DetailCSVPath("2023-10"))
	require.NoError(t, err)

	_, err = exp.Export(context.Background(), sampleReports())
	require.NoError(t, err)
	second, err := os.ReadFile(paths.DetailCSVPath("2023-10"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReportExporter_WorkbookOnly(t *testing.T) {
	_, paths := setupTestEnv(t)
	cfg := config.Default().Report
	cfg.WriteCSV = false

	result, err := NewReportExporter(paths, cfg, nil).Export(context.Background(), sampleReports())
	require.NoError(t, err)
	assert.Equal(t, []string{paths.WorkbookPath}, result.Files)
	assert.NoFileExists(t, paths.DetailCSVPath("2023-10"))
}

func TestReportExporter_OutputError(t *testing.T) {
	_, paths := setupTestEnv(t)
	require.NoError(t, os.MkdirAll(paths.ReportsDir, 0755))

	// a directory where the November summary should go
	require.NoError(t, os.MkdirAll(paths.SummaryCSVPath("2023-11"), 0755))

	result, err := NewReportExporter(paths, config.Default().Report, nil).Export(context.Background(), sampleReports())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeOutput))
	assert.Equal(t, paths.SummaryCSVPath("2023-11"), errors.Path(err))

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{
		paths.DetailCSVPath("2023-10"),
		paths.SummaryCSVPath("2023-10"),
		paths.DetailCSVPath("2023-11"),
	}, appErr.Context["written"])
	assert.Len(t, result.Files, 3)
	assert.NoFileExists(t, paths.WorkbookPath)
}

func TestReportExporter_Canceled(t *testing.T) {
	_, paths := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReportExporter(paths, config.Default().Report, nil).Export(ctx, sampleReports())
	assert.True(t, errors.IsType(err, errors.ErrTypeCanceled))
}
