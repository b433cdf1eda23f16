package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

const (
	EligibilityMonth      = "month"
	EligibilityFirstPunch = "first_punch"
)

// Aggregator turns sessions into per-month day tables and summaries.
type Aggregator struct {
	calendar      *Calendar
	eligibility   string
	halfDayWeight float64
	logger        *slog.Logger
}

// NewAggregator creates an Aggregator for the attendance policy.
func NewAggregator(policy config.PolicyConfig, logger *slog.Logger) (*Aggregator, error) {
	calendar, err := NewCalendar(policy)
	if err != nil {
		return nil, errors.NewConfigError("invalid attendance calendar", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	eligibility := policy.Eligibility
	if eligibility == "" {
		eligibility = EligibilityMonth
	}
	return &Aggregator{
		calendar:      calendar,
		eligibility:   eligibility,
		halfDayWeight: policy.HalfDayWeight,
		logger:        logger,
	}, nil
}

// Aggregate builds one MonthReport per month, in the order given. The roster
// is every employee in sessions. A month without punches yields a report with
// HasData false and a month_gap diagnostic. Output depends only on the inputs.
func (a *Aggregator) Aggregate(ctx context.Context, sessions *Sessions, months []domain.Month) ([]domain.MonthReport, []domain.Diagnostic, error) {
	reports := make([]domain.MonthReport, 0, len(months))
	var diagnostics []domain.Diagnostic

	roster := sessions.Employees()
	for _, month := range months {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		report := domain.MonthReport{
			Month:   month,
			HasData: sessions.HasMonth(month),
		}
		if !report.HasData {
			gap := errors.NewMonthGapError(month.String())
			diagnostics = append(diagnostics, domain.Diagnostic{
				Kind:   domain.DiagnosticMonthGap,
				Reason: fmt.Sprintf("%s: %s", gap.Message, month),
				Err:    gap,
			})
		}

		for _, employee := range roster {
			days := a.employeeMonth(sessions, employee, month)
			report.Days = append(report.Days, days...)
			report.Summaries = append(report.Summaries, a.summarize(employee, sessions.Name(employee), month, days))
		}

		a.logger.DebugContext(ctx, "Month aggregated",
			slog.String("month", month.String()),
			slog.Bool("has_data", report.HasData),
			slog.Int("employees", len(roster)),
			slog.Int("rows", len(report.Days)))

		reports = append(reports, report)
	}

	return reports, diagnostics, nil
}

// employeeMonth returns one row per eligible date of the month, ascending.
func (a *Aggregator) employeeMonth(sessions *Sessions, employee string, month domain.Month) []domain.DayAttendance {
	start, end := month.Start(), month.End()
	if a.eligibility == EligibilityFirstPunch {
		first, ok := sessions.FirstDate(employee)
		if !ok || first.After(end) {
			return nil
		}
		if first.After(start) {
			start = first
		}
	}

	dates := datesBetween(start, end)
	days := make([]domain.DayAttendance, 0, len(dates))
	for _, date := range dates {
		if day, ok := sessions.Lookup(employee, date); ok {
			days = append(days, day)
			continue
		}
		status := domain.StatusAbsent
		if !a.calendar.IsWorkingDay(date) {
			status = domain.StatusOff
		}
		days = append(days, domain.DayAttendance{
			EmployeeID:   employee,
			EmployeeName: sessions.Name(employee),
			Date:         date,
			Status:       status,
		})
	}
	return days
}

// summarize counts statuses. Off days are excluded from TotalDays; a
// non-working day with punches counts like any other day.
func (a *Aggregator) summarize(employee, name string, month domain.Month, days []domain.DayAttendance) domain.MonthlySummary {
	s := domain.MonthlySummary{
		EmployeeID:   employee,
		EmployeeName: name,
		Month:        month,
	}

	var present int
	for _, day := range days {
		if day.Late {
			s.LateDays++
		}
		switch day.Status {
		case domain.StatusPresent:
			present++
		case domain.StatusHalfDay:
			s.HalfDays++
		case domain.StatusIncomplete:
			s.IncompleteDays++
		case domain.StatusAbsent:
			s.AbsentDays++
		case domain.StatusOff:
			s.OffDays++
			continue
		}
		s.TotalDays++
	}

	s.PresentDays = float64(present) + float64(s.HalfDays)*a.halfDayWeight
	s.AttendancePercentage = percentage(s.PresentDays, s.TotalDays)
	return s
}

// percentage returns part/total*100 rounded to two decimals, and 0 when total is 0.
func percentage(part float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part/float64(total)*100*100) / 100
}
