package dataprocessing

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

const deviceHeader = "AGL device export\nTerminal 1\n\n\nNo\tTMNo\tEnNo\tName\tGMNo\tMode\tIN/OUT\tAntipass\tDaiGong\tDateTime\tTR\n"

// deviceLine renders one tab-separated line in the default device layout.
func deviceLine(no int, enNo, name, stamp, tr string) string {
	return fmt.Sprintf("%d\t1\t%s\t%s\t1\t1\tDutyOn\t0\t1\t%s\t%s", no, enNo, name, stamp, tr)
}

func deviceExport(lines ...string) string {
	return deviceHeader + strings.Join(lines, "\n") + "\n"
}

func testPolicy() config.PolicyConfig {
	return config.Default().Policy
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func punch(t *testing.T, employee, value string) domain.PunchRecord {
	t.Helper()
	return domain.PunchRecord{EmployeeID: employee, Timestamp: ts(t, value), Line: 1}
}

func directed(t *testing.T, employee, value string, dir domain.Direction) domain.PunchRecord {
	p := punch(t, employee, value)
	p.Direction = dir
	return p
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func month(t *testing.T, value string) domain.Month {
	t.Helper()
	m, err := domain.ParseMonth(value)
	require.NoError(t, err)
	return m
}
