package dataprocessing

import (
	stderrors "errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"attendcli/internal/config"
	"attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// Parser extracts punch records from the decoded text of a device export.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	format      string
	separator   string
	skipLines   int
	columns     fieldColumns
	spans       fieldSpans
	idWidth     int
	layouts     []string
	location    *time.Location
	inPatterns  []string
	outPatterns []string
}

type fieldColumns struct {
	employee, name, timestamp, direction int
}

// fieldSpans holds fixed-format spans; a nil span disables the field.
type fieldSpans struct {
	employee, name, timestamp, direction *config.Span
}

// ParseResult is the collected form of a parse.
type ParseResult struct {
	Records     []domain.PunchRecord
	Diagnostics []domain.Diagnostic
	// LinesRead counts data lines: neither header nor blank.
	LinesRead int
}

// NewParser builds a Parser from the input configuration.
func NewParser(cfg config.InputConfig) (*Parser, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, errors.NewConfigError("invalid input time zone", err)
	}
	if len(cfg.TimestampLayouts) == 0 {
		return nil, errors.NewConfigError("no timestamp layouts configured", nil)
	}

	p := &Parser{
		format:      cfg.Format,
		separator:   cfg.Separator(),
		skipLines:   cfg.SkipLines,
		idWidth:     cfg.EmployeeIDWidth,
		layouts:     cfg.TimestampLayouts,
		location:    loc,
		inPatterns:  lowerAll(cfg.InPatterns),
		outPatterns: lowerAll(cfg.OutPatterns),
		columns: fieldColumns{
			employee:  cfg.EmployeeColumn,
			name:      cfg.NameColumn,
			timestamp: cfg.TimestampColumn,
			direction: cfg.DirectionColumn,
		},
	}

	if p.format == "fixed" {
		spans := []struct {
			dst      **config.Span
			value    string
			required bool
			field    string
		}{
			{&p.spans.employee, cfg.EmployeeSpan, true, "employee_span"},
			{&p.spans.name, cfg.NameSpan, false, "name_span"},
			{&p.spans.timestamp, cfg.TimestampSpan, true, "timestamp_span"},
			{&p.spans.direction, cfg.DirectionSpan, false, "direction_span"},
		}
		for _, s := range spans {
			if s.value == "" && !s.required {
				continue
			}
			span, err := config.ParseSpan(s.value)
			if err != nil {
				return nil, errors.NewConfigError("invalid input."+s.field, err)
			}
			*s.dst = &span
		}
	}

	return p, nil
}

// Punches yields one entry per data line: a record, or a LINE error for a
// malformed line. Header lines and blank lines yield nothing. The sequence
// can be ranged over repeatedly.
func (p *Parser) Punches(text string) iter.Seq2[domain.PunchRecord, error] {
	return func(yield func(domain.PunchRecord, error) bool) {
		rest := text
		for lineNo := 1; rest != ""; lineNo++ {
			var line string
			line, rest, _ = strings.Cut(rest, "\n")
			line = strings.TrimSuffix(line, "\r")

			if lineNo <= p.skipLines || strings.TrimSpace(line) == "" {
				continue
			}

			record, err := p.parseLine(lineNo, line)
			if err != nil {
				if !yield(domain.PunchRecord{}, err) {
					return
				}
				continue
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// Parse collects Punches into records and skipped-line diagnostics.
func (p *Parser) Parse(text string) *ParseResult {
	result := &ParseResult{}
	for record, err := range p.Punches(text) {
		result.LinesRead++
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, lineDiagnostic(err))
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result
}

func lineDiagnostic(err error) domain.Diagnostic {
	d := domain.Diagnostic{Kind: domain.DiagnosticSkippedLine, Reason: err.Error(), Err: err}
	if appErr, ok := errors.As(err); ok {
		d.Reason = appErr.Message
		d.Line, _ = appErr.Context["line"].(int)
		d.RawLine, _ = appErr.Context["raw_line"].(string)
	}
	return d
}

func (p *Parser) parseLine(lineNo int, line string) (domain.PunchRecord, error) {
	employee, name, stamp, direction, err := p.fields(line)
	if err != nil {
		return domain.PunchRecord{}, errors.NewLineError(lineNo, line, err.Error())
	}

	if employee == "" {
		return domain.PunchRecord{}, errors.NewLineError(lineNo, line, "empty employee id")
	}
	if stamp == "" {
		return domain.PunchRecord{}, errors.NewLineError(lineNo, line, "empty timestamp")
	}

	ts, ok := p.parseTimestamp(stamp)
	if !ok {
		return domain.PunchRecord{}, errors.NewLineError(lineNo, line,
			fmt.Sprintf("unrecognized timestamp %q", stamp))
	}

	record := domain.PunchRecord{
		EmployeeID:   padEmployeeID(employee, p.idWidth),
		EmployeeName: name,
		Timestamp:    ts,
		Direction:    p.classifyDirection(direction),
		Line:         lineNo,
		RawLine:      line,
	}
	if err := validateRecord(record); err != nil {
		return domain.PunchRecord{}, errors.NewLineError(lineNo, line, err.Error())
	}
	return record, nil
}

var recordValidator = validator.New()

// validateRecord checks the struct constraints of a parsed record, such as
// the zero timestamp a "0001-01-01 00:00:00" field parses to.
func validateRecord(record domain.PunchRecord) error {
	err := recordValidator.Struct(record)
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("invalid %s (%s)", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}

// fields extracts the trimmed employee, name, timestamp and direction tokens.
func (p *Parser) fields(line string) (employee, name, stamp, direction string, err error) {
	if p.format == "fixed" {
		runes := []rune(line)
		if employee, err = spanField(runes, p.spans.employee, "employee"); err != nil {
			return
		}
		if stamp, err = spanField(runes, p.spans.timestamp, "timestamp"); err != nil {
			return
		}
		name, _ = spanField(runes, p.spans.name, "name")
		direction, _ = spanField(runes, p.spans.direction, "direction")
		return
	}

	cols := strings.Split(line, p.separator)
	if employee, err = column(cols, p.columns.employee, "employee"); err != nil {
		return
	}
	if stamp, err = column(cols, p.columns.timestamp, "timestamp"); err != nil {
		return
	}
	name, _ = column(cols, p.columns.name, "name")
	direction, _ = column(cols, p.columns.direction, "direction")
	return
}

func column(cols []string, idx int, field string) (string, error) {
	if idx < 0 {
		return "", nil
	}
	if idx >= len(cols) {
		return "", fmt.Errorf("missing %s column %d (line has %d columns)", field, idx, len(cols))
	}
	return strings.TrimSpace(cols[idx]), nil
}

func spanField(runes []rune, span *config.Span, field string) (string, error) {
	if span == nil {
		return "", nil
	}
	if span.Start >= len(runes) {
		return "", fmt.Errorf("line too short for %s field at %d:%d", field, span.Start, span.End)
	}
	end := min(span.End, len(runes))
	return strings.TrimSpace(string(runes[span.Start:end])), nil
}

func (p *Parser) parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range p.layouts {
		if t, err := time.ParseInLocation(layout, s, p.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// classifyDirection matches the token against out patterns first, then in patterns.
func (p *Parser) classifyDirection(token string) domain.Direction {
	token = strings.ToLower(token)
	if token == "" {
		return domain.DirectionUnknown
	}
	for _, pattern := range p.outPatterns {
		if strings.Contains(token, pattern) {
			return domain.DirectionOut
		}
	}
	for _, pattern := range p.inPatterns {
		if strings.Contains(token, pattern) {
			return domain.DirectionIn
		}
	}
	return domain.DirectionUnknown
}

func padEmployeeID(id string, width int) string {
	if width <= 0 || len(id) >= width {
		return id
	}
	return strings.Repeat("0", width-len(id)) + id
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
