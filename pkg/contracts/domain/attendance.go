package domain

import (
	"time"
)

// Direction is the punch direction reported by the device, when it reports one.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionIn
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "unknown"
	}
}

// PunchRecord is a single clock event parsed from one line of a device log.
// It is immutable once parsed.
type PunchRecord struct {
	EmployeeID   string    `json:"employee_id" validate:"required"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Timestamp    time.Time `json:"timestamp" validate:"required"`
	Direction    Direction `json:"direction"`
	Line         int       `json:"line" validate:"min=1"`
	RawLine      string    `json:"raw_line"`
}

// Status classifies one employee-day.
type Status string

const (
	StatusPresent    Status = "Present"
	StatusAbsent     Status = "Absent"
	StatusHalfDay    Status = "HalfDay"
	StatusIncomplete Status = "Incomplete"
	// StatusOff is a non-working day (weekend or holiday) without punches.
	StatusOff Status = "Off"
)

// Code returns the single-letter code used in the day-grid sheet.
func (s Status) Code() string {
	switch s {
	case StatusPresent:
		return "P"
	case StatusAbsent:
		return "A"
	case StatusHalfDay:
		return "H"
	case StatusIncomplete:
		return "E"
	case StatusOff:
		return "O"
	default:
		return "?"
	}
}

// DayAttendance is the derived attendance of one employee on one logical day.
type DayAttendance struct {
	EmployeeID   string        `json:"employee_id"`
	EmployeeName string        `json:"employee_name,omitempty"`
	Date         time.Time     `json:"date"`
	InTime       *time.Time    `json:"in_time,omitempty"`
	OutTime      *time.Time    `json:"out_time,omitempty"`
	Worked       time.Duration `json:"worked"`
	Late         bool          `json:"late"`
	Status       Status        `json:"status"`
}

// MonthlySummary aggregates an employee's DayAttendance over one month.
type MonthlySummary struct {
	EmployeeID           string  `json:"employee_id"`
	EmployeeName         string  `json:"employee_name,omitempty"`
	Month                Month   `json:"month"`
	TotalDays            int     `json:"total_days"`
	PresentDays          float64 `json:"present_days"`
	AbsentDays           int     `json:"absent_days"`
	HalfDays             int     `json:"half_days"`
	IncompleteDays       int     `json:"incomplete_days"`
	LateDays             int     `json:"late_days"`
	OffDays              int     `json:"off_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// MonthReport is one month's section of the output: the day table and the
// per-employee summaries. HasData is false for a requested month with no punches.
type MonthReport struct {
	Month     Month            `json:"month"`
	HasData   bool             `json:"has_data"`
	Days      []DayAttendance  `json:"days"`
	Summaries []MonthlySummary `json:"summaries"`
}

// DiagnosticKind names the operator-facing diagnostic categories.
type DiagnosticKind string

const (
	DiagnosticSkippedLine      DiagnosticKind = "skipped_line"
	DiagnosticEncodingFallback DiagnosticKind = "encoding_fallback"
	DiagnosticMonthGap         DiagnosticKind = "month_gap"
)

// Diagnostic is a non-fatal event surfaced to the diagnostic log.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line,omitempty"`
	RawLine string         `json:"raw_line,omitempty"`
	Reason  string         `json:"reason"`
	// Err is the classified error behind the diagnostic, if any.
	Err     error          `json:"-"`
}
