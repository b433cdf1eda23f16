package dataprocessing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// SelectionMode is how the target months are chosen.
type SelectionMode string

const (
	SelectAll         SelectionMode = "all"
	SelectExplicit    SelectionMode = "explicit"
	SelectInteractive SelectionMode = "interactive"
)

// Selection is a month-selection request. Months is used by SelectExplicit,
// Input (the operator's menu answer) by SelectInteractive.
type Selection struct {
	Mode   SelectionMode
	Months []domain.Month
	Input  string
}

// Resolution is the outcome of resolving a Selection against the data.
type Resolution struct {
	// Months are the target months, ascending and distinct.
	Months []domain.Month
	// Gaps are requested months with no punches; they are also in Months.
	Gaps []domain.Month
	// Quit is set when the operator declined to select anything.
	Quit bool
	// Ignored lists menu tokens that did not name an available month.
	Ignored []string
}

// ParseSelection parses a -months value: "all" or comma-separated YYYY-MM tokens.
func ParseSelection(value string) (Selection, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return Selection{Mode: SelectAll}, nil
	}

	var months []domain.Month
	for _, token := range strings.Split(value, ",") {
		if strings.TrimSpace(token) == "" {
			continue
		}
		m, err := domain.ParseMonth(token)
		if err != nil {
			return Selection{}, errors.NewValidationError(err.Error()).WithContext("token", token)
		}
		months = append(months, m)
	}
	if len(months) == 0 {
		return Selection{}, errors.NewValidationError("no months given, expected \"all\" or YYYY-MM[,YYYY-MM...]")
	}
	return Selection{Mode: SelectExplicit, Months: months}, nil
}

// ResolveMonths maps a selection onto the available months. It has no side effects.
func ResolveMonths(sel Selection, available []domain.Month) (*Resolution, error) {
	available = sortedMonths(available)

	switch sel.Mode {
	case SelectAll:
		return &Resolution{Months: available}, nil

	case SelectExplicit:
		months := sortedMonths(sel.Months)
		res := &Resolution{Months: months}
		for _, m := range months {
			if !slices.Contains(available, m) {
				res.Gaps = append(res.Gaps, m)
			}
		}
		return res, nil

	case SelectInteractive:
		return ParseMenuSelection(sel.Input, available)

	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown selection mode %q", sel.Mode))
	}
}

// ParseMenuSelection interprets an answer to the month menu, where available
// is listed with 1-based numbers. It accepts "all", "quit", comma-separated
// numbers and "a-b" ranges. Tokens that name no listed month are reported in
// Ignored; an answer with no valid month at all is a VALIDATION error.
func ParseMenuSelection(input string, available []domain.Month) (*Resolution, error) {
	available = sortedMonths(available)
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "quit", "q", "exit":
		return &Resolution{Quit: true}, nil
	case "all":
		return &Resolution{Months: available}, nil
	}

	selected := make(map[int]bool)
	var ignored []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, ok := parseMenuToken(part)
		if !ok || lo < 1 || hi > len(available) || lo > hi {
			ignored = append(ignored, part)
			continue
		}
		for i := lo; i <= hi; i++ {
			selected[i] = true
		}
	}

	if len(selected) == 0 {
		return nil, errors.NewValidationError("no valid months selected").WithContext("input", input)
	}

	res := &Resolution{Ignored: ignored}
	for i, m := range available {
		if selected[i+1] {
			res.Months = append(res.Months, m)
		}
	}
	return res, nil
}

// parseMenuToken parses "n" or "a-b".
func parseMenuToken(part string) (lo, hi int, ok bool) {
	if a, b, found := strings.Cut(part, "-"); found {
		start, errA := strconv.Atoi(strings.TrimSpace(a))
		end, errB := strconv.Atoi(strings.TrimSpace(b))
		return start, end, errA == nil && errB == nil
	}
	n, err := strconv.Atoi(part)
	return n, n, err == nil
}

// MonthStat describes one month of data for the selection menu.
type MonthStat struct {
	Month     domain.Month
	Records   int
	Employees int
}

// MonthStats counts punches and distinct employees per month of logical day, ascending.
func MonthStats(records []domain.PunchRecord, dayCutoff time.Duration) []MonthStat {
	counts := make(map[domain.Month]int)
	employees := make(map[domain.Month]map[string]bool)
	for _, r := range records {
		m := domain.MonthOf(logicalDate(r.Timestamp, dayCutoff))
		counts[m]++
		if employees[m] == nil {
			employees[m] = make(map[string]bool)
		}
		employees[m][r.EmployeeID] = true
	}

	stats := make([]MonthStat, 0, len(counts))
	for m, n := range counts {
		stats = append(stats, MonthStat{Month: m, Records: n, Employees: len(employees[m])})
	}
	slices.SortFunc(stats, func(a, b MonthStat) int { return compareMonths(a.Month, b.Month) })
	return stats
}

func sortedMonths(months []domain.Month) []domain.Month {
	out := slices.Clone(months)
	slices.SortFunc(out, compareMonths)
	return slices.Compact(out)
}

func compareMonths(a, b domain.Month) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}
