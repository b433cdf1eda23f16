package dataprocessing

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

func newTestParser(t *testing.T, mutate func(*config.InputConfig)) *Parser {
	t.Helper()
	cfg := config.Default().Input
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewParser(cfg)
	require.NoError(t, err)
	return p
}

func TestParser_DeviceExport(t *testing.T) {
	p := newTestParser(t, nil)

	text := deviceExport(
		deviceLine(1, "1", "Alice", "2023-10-01 09:00:00", "Time In"),
		deviceLine(2, "1", "Alice", "2023-10-01 18:00:00", "Time Out"),
		deviceLine(3, "42", "Bob", "02/10/2023 08:30:00", "Check In"),
	)

	result := p.Parse(text)
	require.Len(t, result.Records, 3)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 3, result.LinesRead)

	first := result.Records[0]
	assert.Equal(t, "00000001", first.EmployeeID)
	assert.Equal(t, "Alice", first.EmployeeName)
	assert.Equal(t, time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, domain.DirectionIn, first.Direction)
	assert.Equal(t, 6, first.Line)

	assert.Equal(t, domain.DirectionOut, result.Records[1].Direction)

	// day-first layout is tried before month-first
	assert.Equal(t, time.Date(2023, 10, 2, 8, 30, 0, 0, time.UTC), result.Records[2].Timestamp)
	assert.Equal(t, "00000042", result.Records[2].EmployeeID)
}

func TestParser_MalformedLineAmongValid(t *testing.T) {
	p := newTestParser(t, nil)

	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, deviceLine(i, "7", "Carol", fmt.Sprintf("2023-10-%02d 09:00:00", i), ""))
		if i == 5 {
			lines = append(lines, deviceLine(99, "7", "Carol", "2023-13-45 99:99:99", ""))
		}
	}

	result := p.Parse(deviceExport(lines...))
	assert.Len(t, result.Records, 10)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 11, result.LinesRead)

	diag := result.Diagnostics[0]
	assert.Equal(t, domain.DiagnosticSkippedLine, diag.Kind)
	assert.Equal(t, 11, diag.Line)
	assert.Contains(t, diag.RawLine, "2023-13-45 99:99:99")
	assert.Contains(t, diag.Reason, "unrecognized timestamp")
}

func TestParser_LineErrors(t *testing.T) {
	p := newTestParser(t, nil)

	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"too few columns", "1\t1\t5\tDan", "missing timestamp column"},
		{"empty employee", deviceLine(1, " ", "Dan", "2023-10-01 09:00:00", ""), "empty employee id"},
		{"empty timestamp", deviceLine(1, "5", "Dan", "  ", ""), "empty timestamp"},
		{"bad timestamp", deviceLine(1, "5", "Dan", "yesterday", ""), "unrecognized timestamp"},
		{"zero timestamp", deviceLine(1, "5", "Dan", "0001-01-01 00:00:00", ""), "invalid timestamp (required)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(deviceExport(tt.line))
			assert.Empty(t, result.Records)
			require.Len(t, result.Diagnostics, 1)
			assert.Contains(t, result.Diagnostics[0].Reason, tt.reason)
			assert.Equal(t, tt.line, result.Diagnostics[0].RawLine)
			assert.True(t, errors.IsType(result.Diagnostics[0].Err, errors.ErrTypeLine))
		})
	}
}

func TestParser_SkipsHeadersAndBlankLines(t *testing.T) {
	p := newTestParser(t, nil)

	text := deviceHeader + "\r\n   \n" + deviceLine(1, "1", "A", "2023-10-01 09:00:00", "") + "\r\n\n"
	result := p.Parse(text)

	assert.Len(t, result.Records, 1)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 1, result.LinesRead)
}

func TestParser_PunchesIsRestartable(t *testing.T) {
	p := newTestParser(t, nil)
	text := deviceExport(
		deviceLine(1, "1", "A", "2023-10-01 09:00:00", ""),
		deviceLine(2, "1", "A", "garbage", ""),
	)

	count := func() (records, failures int) {
		for _, err := range p.Punches(text) {
			if err != nil {
				failures++
			} else {
				records++
			}
		}
		return
	}

	r1, f1 := count()
	r2, f2 := count()
	assert.Equal(t, 1, r1)
	assert.Equal(t, 1, f1)
	assert.Equal(t, r1, r2)
	assert.Equal(t, f1, f2)

	// early termination
	seen := 0
	for range p.Punches(text) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestParser_Direction(t *testing.T) {
	p := newTestParser(t, nil)

	tests := map[string]domain.Direction{
		"Time In":   domain.DirectionIn,
		"CHECK OUT": domain.DirectionOut,
		"Entry":     domain.DirectionIn,
		"exit":      domain.DirectionOut,
		"":          domain.DirectionUnknown,
		"Break":     domain.DirectionUnknown,
	}
	for token, want := range tests {
		assert.Equal(t, want, p.classifyDirection(token), "token %q", token)
	}
}

func TestParser_FixedFormat(t *testing.T) {
	p := newTestParser(t, func(c *config.InputConfig) {
		c.Format = "fixed"
		c.SkipLines = 0
		c.EmployeeSpan = "0:4"
		c.NameSpan = "4:12"
		c.TimestampSpan = "12:31"
		c.DirectionSpan = "31:35"
		c.EmployeeIDWidth = 6
	})

	text := "E01 Ana     2023-10-01 09:00:00 IN \n" +
		"E02 Bo      2023-10-01 18:15:00OUT\n" +
		"E03 short\n"

	result := p.Parse(text)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "000E01", result.Records[0].EmployeeID)
	assert.Equal(t, "Ana", result.Records[0].EmployeeName)
	assert.Equal(t, domain.DirectionIn, result.Records[0].Direction)
	assert.Equal(t, domain.DirectionOut, result.Records[1].Direction)
	assert.Equal(t, time.Date(2023, 10, 1, 18, 15, 0, 0, time.UTC), result.Records[1].Timestamp)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 3, result.Diagnostics[0].Line)
}

func TestParser_DelimiterAndTimezone(t *testing.T) {
	p := newTestParser(t, func(c *config.InputConfig) {
		c.Delimiter = "comma"
		c.SkipLines = 1
		c.EmployeeColumn = 0
		c.NameColumn = -1
		c.TimestampColumn = 1
		c.DirectionColumn = -1
		c.EmployeeIDWidth = 0
		c.Timezone = "Asia/Baghdad"
	})

	result := p.Parse("id,when\n17,2023-10-01 09:00\n")
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "17", rec.EmployeeID)
	assert.Empty(t, rec.EmployeeName)
	assert.Equal(t, domain.DirectionUnknown, rec.Direction)
	assert.Equal(t, "Asia/Baghdad", rec.Timestamp.Location().String())
	assert.Equal(t, 9, rec.Timestamp.Hour())
}

func TestPadEmployeeID(t *testing.T) {
	assert.Equal(t, "00000123", padEmployeeID("123", 8))
	assert.Equal(t, "123456789", padEmployeeID("123456789", 8))
	assert.Equal(t, "123", padEmployeeID("123", 0))
}
