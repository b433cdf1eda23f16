package domain

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month. The zero value is not a valid month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" token.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

// Start returns midnight UTC of the first day.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC of the last day.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	return m.End().Day()
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// SheetName formats the month as "October-2023".
func (m Month) SheetName() string {
	return m.Start().Format("January-2006")
}

// Title formats the month as "October 2023".
func (m Month) Title() string {
	return m.Start().Format("January 2006")
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
