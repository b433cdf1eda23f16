package dataprocessing

import (
	"context"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

type dayKey struct {
	employee string
	date     time.Time
}

// Sessions maps (employee, logical day) to the attendance derived from that
// day's punches. Only days with at least one punch are present.
type Sessions struct {
	days       map[dayKey]domain.DayAttendance
	names      map[string]string
	firstDates map[string]time.Time
	employees  []string
	dates      []time.Time
}

// Lookup returns the attendance of employee on date, if the employee punched that day.
func (s *Sessions) Lookup(employee string, date time.Time) (domain.DayAttendance, bool) {
	day, ok := s.days[dayKey{employee: employee, date: civilDate(date)}]
	return day, ok
}

// Employees returns every employee seen in the punches, sorted.
func (s *Sessions) Employees() []string {
	return slices.Clone(s.employees)
}

// Dates returns every logical day with at least one punch, ascending.
func (s *Sessions) Dates() []time.Time {
	return slices.Clone(s.dates)
}

// Months returns the months that contain at least one punch, ascending.
func (s *Sessions) Months() []domain.Month {
	var months []domain.Month
	for _, d := range s.dates {
		m := domain.MonthOf(d)
		if len(months) == 0 || months[len(months)-1] != m {
			months = append(months, m)
		}
	}
	return months
}

// HasMonth reports whether any punch falls in m.
func (s *Sessions) HasMonth(m domain.Month) bool {
	return slices.Contains(s.Months(), m)
}

// Name returns the employee name reported by the device, if any.
func (s *Sessions) Name(employee string) string {
	return s.names[employee]
}

// FirstDate returns the logical day of the employee's first punch.
func (s *Sessions) FirstDate(employee string) (time.Time, bool) {
	d, ok := s.firstDates[employee]
	return d, ok
}

// Len returns the number of employee-days with punches.
func (s *Sessions) Len() int {
	return len(s.days)
}

type employeeDays struct {
	employee string
	name     string
	days     []domain.DayAttendance
}

// BuildSessions groups punches by employee and logical day and derives each
// day's attendance. Input order does not matter. With policy.Workers > 1 the
// employees are built concurrently and merged once all partitions finish.
func BuildSessions(ctx context.Context, records []domain.PunchRecord, policy config.PolicyConfig) (*Sessions, error) {
	byEmployee := make(map[string][]domain.PunchRecord)
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	employees := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employees = append(employees, id)
	}
	sort.Strings(employees)

	results := make([]employeeDays, len(employees))
	if policy.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(policy.Workers)
		for i, id := range employees {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = buildEmployee(id, byEmployee[id], policy)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, id := range employees {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = buildEmployee(id, byEmployee[id], policy)
		}
	}

	return mergeSessions(results), nil
}

func mergeSessions(results []employeeDays) *Sessions {
	s := &Sessions{
		days:       make(map[dayKey]domain.DayAttendance),
		names:      make(map[string]string, len(results)),
		firstDates: make(map[string]time.Time, len(results)),
		employees:  make([]string, 0, len(results)),
	}

	seen := make(map[time.Time]bool)
	for _, r := range results {
		s.employees = append(s.employees, r.employee)
		s.names[r.employee] = r.name
		for i, day := range r.days {
			if i == 0 {
				s.firstDates[r.employee] = day.Date
			}
			s.days[dayKey{employee: r.employee, date: day.Date}] = day
			if !seen[day.Date] {
				seen[day.Date] = true
				s.dates = append(s.dates, day.Date)
			}
		}
	}
	slices.SortFunc(s.dates, func(a, b time.Time) int { return a.Compare(b) })
	return s
}

// buildEmployee derives the days of one employee. It shares nothing with other employees.
func buildEmployee(id string, punches []domain.PunchRecord, policy config.PolicyConfig) employeeDays {
	punches = slices.Clone(punches)
	slices.SortStableFunc(punches, func(a, b domain.PunchRecord) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return a.Line - b.Line
	})

	result := employeeDays{employee: id}
	for _, p := range punches {
		if p.EmployeeName != "" {
			result.name = p.EmployeeName
			break
		}
	}

	var (
		current time.Time
		day     []domain.PunchRecord
	)
	flush := func() {
		if len(day) > 0 {
			result.days = append(result.days, deriveDay(id, result.name, current, day, policy))
		}
	}
	for _, p := range punches {
		date := logicalDate(p.Timestamp, policy.DayCutoff)
		if !date.Equal(current) {
			flush()
			current, day = date, nil
		}
		// duplicate timestamps collapse into one punch
		if n := len(day); n > 0 && day[n-1].Timestamp.Equal(p.Timestamp) {
			if day[n-1].Direction == domain.DirectionUnknown {
				day[n-1] = p
			}
			continue
		}
		day = append(day, p)
	}
	flush()

	return result
}

// logicalDate attributes punches before the cutoff time of day to the previous date.
func logicalDate(ts time.Time, cutoff time.Duration) time.Time {
	return civilDate(ts.Add(-cutoff))
}

// deriveDay classifies one logical day from its sorted, distinct punches.
func deriveDay(employee, name string, date time.Time, punches []domain.PunchRecord, policy config.PolicyConfig) domain.DayAttendance {
	day := domain.DayAttendance{
		EmployeeID:   employee,
		EmployeeName: name,
		Date:         date,
	}

	if len(punches) == 1 {
		ts := punches[0].Timestamp
		if policy.UseDirection && punches[0].Direction == domain.DirectionOut {
			day.OutTime = &ts
		} else {
			day.InTime = &ts
		}
		day.Status = domain.StatusIncomplete
		if policy.SinglePunchAsHalfDay {
			day.Status = domain.StatusHalfDay
		}
		day.Late = isLate(day.InTime, date, policy)
		return day
	}

	in, out := pairPunches(punches, policy.UseDirection)
	day.InTime, day.OutTime = in, out
	day.Late = isLate(in, date, policy)

	if in == nil || out == nil || !out.After(*in) {
		day.Status = domain.StatusIncomplete
		return day
	}

	day.Worked = out.Sub(*in)
	if day.Worked >= policy.FullDayThreshold {
		day.Status = domain.StatusPresent
	} else {
		day.Status = domain.StatusHalfDay
	}
	return day
}

// pairPunches picks the in and out times. Without direction the earliest and
// latest punches pair up; with it, the earliest In and the latest Out, with
// Unknown punches eligible for either side.
func pairPunches(punches []domain.PunchRecord, useDirection bool) (in, out *time.Time) {
	if !useDirection {
		first, last := punches[0].Timestamp, punches[len(punches)-1].Timestamp
		return &first, &last
	}

	for _, p := range punches {
		if p.Direction != domain.DirectionOut {
			ts := p.Timestamp
			in = &ts
			break
		}
	}
	for i := len(punches) - 1; i >= 0; i-- {
		if punches[i].Direction != domain.DirectionIn {
			ts := punches[i].Timestamp
			out = &ts
			break
		}
	}
	return in, out
}

// isLate reports whether the in-punch comes after the late_after clock time
// of its logical day. The logical day starts at the cutoff, so a late_after
// earlier than the cutoff falls on the next calendar date.
func isLate(in *time.Time, date time.Time, policy config.PolicyConfig) bool {
	if in == nil || policy.LateAfter <= 0 {
		return false
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, in.Location()).Add(policy.DayCutoff)
	threshold := (policy.LateAfter - policy.DayCutoff + 24*time.Hour) % (24 * time.Hour)
	return in.Sub(start) > threshold
}
