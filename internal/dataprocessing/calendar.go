package dataprocessing

import (
	"time"

	"attendcli/internal/config"
)

// Calendar decides which dates are working days. Without configured weekends
// or holidays every date is a working day.
type Calendar struct {
	weekends map[time.Weekday]bool
	holidays map[time.Time]bool
}

// NewCalendar builds a Calendar from the attendance policy.
func NewCalendar(policy config.PolicyConfig) (*Calendar, error) {
	weekdays, err := policy.WeekendDays()
	if err != nil {
		return nil, err
	}
	holidays, err := policy.HolidayDates()
	if err != nil {
		return nil, err
	}

	c := &Calendar{
		weekends: make(map[time.Weekday]bool, len(weekdays)),
		holidays: make(map[time.Time]bool, len(holidays)),
	}
	for _, d := range weekdays {
		c.weekends[d] = true
	}
	for _, h := range holidays {
		c.holidays[civilDate(h)] = true
	}
	return c, nil
}

// IsWorkingDay reports whether attendance is expected on date.
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if c == nil {
		return true
	}
	date = civilDate(date)
	return !c.weekends[date.Weekday()] && !c.holidays[date]
}

// civilDate drops the clock and zone of t, keeping its calendar date, as midnight UTC.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// datesBetween returns every date from start to end inclusive.
func datesBetween(start, end time.Time) []time.Time {
	start, end = civilDate(start), civilDate(end)
	if end.Before(start) {
		return nil
	}
	dates := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
