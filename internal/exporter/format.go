package exporter

import (
	"fmt"
	"strconv"
	"time"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

var (
	// DetailHeaders are the columns of report_YYYY-MM.csv and the month detail sheet.
	DetailHeaders = []string{"EmployeeID", "Date", "InTime", "OutTime", "Status", "EmployeeName", "WorkedHours"}
	// SummaryHeaders are the columns of summary_YYYY-MM.csv and the month summary sheet.
	SummaryHeaders = []string{"EmployeeID", "TotalDays", "PresentDays", "AbsentDays", "AttendancePercentage",
		"EmployeeName", "HalfDays", "IncompleteDays", "LateDays", "OffDays"}
)

// Formatter renders attendance values as table cells.
type Formatter struct {
	timeFormat string
	dateFormat string
	emptyTime  string
}

// NewFormatter creates a Formatter from the report configuration.
func NewFormatter(cfg config.ReportConfig) *Formatter {
	f := &Formatter{
		timeFormat: cfg.TimeFormat,
		dateFormat: cfg.DateFormat,
		emptyTime:  cfg.EmptyTime,
	}
	if f.timeFormat == "" {
		f.timeFormat = "15:04"
	}
	if f.dateFormat == "" {
		f.dateFormat = "2006-01-02"
	}
	return f
}

// DetailRow renders one day in DetailHeaders order.
func (f *Formatter) DetailRow(day domain.DayAttendance) []string {
	return []string{
		day.EmployeeID,
		f.Date(day.Date),
		f.Time(day.InTime),
		f.Time(day.OutTime),
		string(day.Status),
		day.EmployeeName,
		formatHours(day.Worked),
	}
}

// SummaryRow renders one summary in SummaryHeaders order.
func (f *Formatter) SummaryRow(s domain.MonthlySummary) []string {
	return []string{
		s.EmployeeID,
		formatInt(s.TotalDays),
		formatFloat(s.PresentDays),
		formatInt(s.AbsentDays),
		formatFloat(s.AttendancePercentage),
		s.EmployeeName,
		formatInt(s.HalfDays),
		formatInt(s.IncompleteDays),
		formatInt(s.LateDays),
		formatInt(s.OffDays),
	}
}

// Time renders a punch time, or the configured placeholder when absent.
func (f *Formatter) Time(t *time.Time) string {
	if t == nil {
		return f.emptyTime
	}
	return t.Format(f.timeFormat)
}

// Date renders a calendar date.
func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateFormat)
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatHours renders a duration as decimal hours; zero renders empty.
func formatHours(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return formatFloat(d.Hours())
}
