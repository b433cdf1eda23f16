package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:       "0.00",
		13.4:    "13.40",
		3.2258:  "3.23",
		100:     "100.00",
		0.005:   "0.01",
		66.6666: "66.67",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFloat(in), "value %v", in)
	}
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "", formatHours(0))
	assert.Equal(t, "8.50", formatHours(8*time.Hour+30*time.Minute))
}

func TestFormatter_DetailRow(t *testing.T) {
	in := time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2023, 10, 1, 18, 0, 0, 0, time.UTC)

	f := NewFormatter(config.Default().Report)
	row := f.DetailRow(domain.DayAttendance{
		EmployeeID:   "E001",
		EmployeeName: "Alice",
		Date:         time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		InTime:       &in,
		OutTime:      &out,
		Worked:       out.Sub(in),
		Status:       domain.StatusPresent,
	})
	assert.Equal(t, []string{"E001", "2023-10-01", "09:00", "18:00", "Present", "Alice", "9.00"}, row)
	assert.Len(t, row, len(DetailHeaders))

	absent := f.DetailRow(domain.DayAttendance{EmployeeID: "E002", Date: in, Status: domain.StatusAbsent})
	assert.Equal(t, []string{"E002", "2023-10-01", "", "", "Absent", "", ""}, absent)
}

func TestFormatter_EmptyTimeAndLayouts(t *testing.T) {
	cfg := config.ReportConfig{EmptyTime: "--:--", TimeFormat: "15:04:05", DateFormat: "02/01/2006"}
	f := NewFormatter(cfg)

	in := time.Date(2023, 10, 5, 7, 45, 10, 0, time.UTC)
	assert.Equal(t, "07:45:10", f.Time(&in))
	assert.Equal(t, "--:--", f.Time(nil))
	assert.Equal(t, "05/10/2023", f.Date(in))

	defaults := NewFormatter(config.ReportConfig{})
	assert.Equal(t, "07:45", defaults.Time(&in))
	assert.Equal(t, "2023-10-05", defaults.Date(in))
}

func TestFormatter_SummaryRow(t *testing.T) {
	f := NewFormatter(config.Default().Report)
	row := f.SummaryRow(domain.MonthlySummary{
		EmployeeID:           "E001",
		EmployeeName:         "Alice",
		TotalDays:            30,
		PresentDays:          20.5,
		AbsentDays:           8,
		HalfDays:             1,
		IncompleteDays:       1,
		LateDays:             3,
		AttendancePercentage: 68.33,
	})
	assert.Equal(t, []string{"E001", "30", "20.50", "8", "68.33", "Alice", "1", "1", "3", "0"}, row)
	assert.Len(t, row, len(SummaryHeaders))
}
