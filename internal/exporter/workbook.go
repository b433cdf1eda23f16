package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"attendcli/pkg/contracts/domain"
)

const (
	defaultSheet      = "Sheet1"
	OverallSheetName  = "Summary"
	summarySheetStem  = "Summary-"
	gridSheetStem     = "Grid-"
	headerFillColor   = "#4472C4"
	headerFontColor   = "#FFFFFF"
	gridRowsPerPerson = 3
)

// overallHeaders are the columns of the overall Summary sheet.
var overallHeaders = append([]string{"Month"}, SummaryHeaders...)

// SummarySheetName returns the month summary sheet name, e.g. Summary-October-2023.
func SummarySheetName(m domain.Month) string {
	return summarySheetStem + m.SheetName()
}

// GridSheetName returns the month day-grid sheet name, e.g. Grid-October-2023.
func GridSheetName(m domain.Month) string {
	return gridSheetStem + m.SheetName()
}

// WorkbookWriter writes month reports into one multi-sheet workbook.
type WorkbookWriter struct {
	format     *Formatter
	gridSheets bool
	logger     *slog.Logger
}

// NewWorkbookWriter creates a workbook writer. With gridSheets set a day-grid
// sheet (In-Time, Out-Time and Status per day) follows each month.
func NewWorkbookWriter(format *Formatter, gridSheets bool, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{format: format, gridSheets: gridSheets, logger: logger}
}

// Write builds the workbook and saves it to path. Sheets per month, in month
// order: detail, summary and optionally grid; then the overall Summary sheet.
func (w *WorkbookWriter) Write(path string, reports []domain.MonthReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	var overall [][]string
	for _, report := range reports {
		detail := make([][]string, 0, len(report.Days))
		for _, day := range report.Days {
			detail = append(detail, w.format.DetailRow(day))
		}
		if err := w.writeTable(f, report.Month.SheetName(), DetailHeaders, detail, headerStyle); err != nil {
			return err
		}

		summary := make([][]string, 0, len(report.Summaries))
		for _, s := range report.Summaries {
			row := w.format.SummaryRow(s)
			summary = append(summary, row)
			overall = append(overall, append([]string{report.Month.String()}, row...))
		}
		if err := w.writeTable(f, SummarySheetName(report.Month), SummaryHeaders, summary, headerStyle); err != nil {
			return err
		}

		if w.gridSheets {
			if err := w.writeGrid(f, report, headerStyle); err != nil {
				return err
			}
		}
	}

	if err := w.writeTable(f, OverallSheetName, overallHeaders, overall, headerStyle); err != nil {
		return err
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

// writeTable writes a header row and string rows to a new sheet.
func (w *WorkbookWriter) writeTable(f *excelize.File, sheet string, headers []string, rows [][]string, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		return fmt.Errorf("failed to size columns of %s: %w", sheet, err)
	}
	return nil
}

// writeGrid writes the day-grid: one column per day of the month and three
// rows per employee (In-Time, Out-Time, Status code).
func (w *WorkbookWriter) writeGrid(f *excelize.File, report domain.MonthReport, headerStyle int) error {
	sheet := GridSheetName(report.Month)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	days := report.Month.Days()
	headers := make([]string, 0, days+2)
	headers = append(headers, "Employee", "Detail")
	for d := 1; d <= days; d++ {
		headers = append(headers, fmt.Sprintf("Day_%02d", d))
	}
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, s := range report.Summaries {
		label := s.EmployeeID
		if s.EmployeeName != "" {
			label += " - " + s.EmployeeName
		}
		in := make([]string, days)
		out := make([]string, days)
		status := make([]string, days)
		for _, day := range report.Days {
			if day.EmployeeID != s.EmployeeID {
				continue
			}
			i := day.Date.Day() - 1
			in[i] = w.format.Time(day.InTime)
			out[i] = w.format.Time(day.OutTime)
			status[i] = day.Status.Code()
		}

		lines := [gridRowsPerPerson][]string{
			append([]string{label, "In-Time"}, in...),
			append([]string{"", "Out-Time"}, out...),
			append([]string{"", "Status"}, status...),
		}
		for _, line := range lines {
			if err := setRow(f, sheet, row, line); err != nil {
				return err
			}
			row++
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
