package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. ATTEND_POLICY_FULL_DAY_THRESHOLD.
const EnvPrefix = "ATTEND"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Input     InputConfig     `yaml:"input"`
	Policy    PolicyConfig    `yaml:"policy"`
	Report    ReportConfig    `yaml:"report"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// InputConfig describes the device export: encodings, line layout and timestamp formats.
type InputConfig struct {
	File      string   `yaml:"file" split_words:"true"`
	Encodings []string `yaml:"encodings" split_words:"true" validate:"min=1,dive,required"`

	// Format is "delimited" (columns split by Delimiter) or "fixed" (character spans).
	Format    string `yaml:"format" split_words:"true" validate:"oneof=delimited fixed"`
	Delimiter string `yaml:"delimiter" split_words:"true"`
	SkipLines int    `yaml:"skip_lines" split_words:"true" validate:"min=0"`

	// Zero-based column indices for the delimited format. -1 disables optional columns.
	EmployeeColumn  int `yaml:"employee_column" split_words:"true" validate:"min=0"`
	NameColumn      int `yaml:"name_column" split_words:"true" validate:"min=-1"`
	TimestampColumn int `yaml:"timestamp_column" split_words:"true" validate:"min=0"`
	DirectionColumn int `yaml:"direction_column" split_words:"true" validate:"min=-1"`

	// "start:end" character spans for the fixed format. Empty disables optional fields.
	EmployeeSpan  string `yaml:"employee_span" split_words:"true"`
	NameSpan      string `yaml:"name_span" split_words:"true"`
	TimestampSpan string `yaml:"timestamp_span" split_words:"true"`
	DirectionSpan string `yaml:"direction_span" split_words:"true"`

	EmployeeIDWidth  int      `yaml:"employee_id_width" split_words:"true" validate:"min=0,max=32"`
	TimestampLayouts []string `yaml:"timestamp_layouts" split_words:"true" validate:"min=1,dive,required"`
	Timezone         string   `yaml:"timezone" split_words:"true"`
	InPatterns       []string `yaml:"in_patterns" split_words:"true"`
	OutPatterns      []string `yaml:"out_patterns" split_words:"true"`
}

// PolicyConfig holds the organization-specific attendance rules.
type PolicyConfig struct {
	FullDayThreshold     time.Duration `yaml:"full_day_threshold" split_words:"true"`
	DayCutoff            time.Duration `yaml:"day_cutoff" split_words:"true"`
	// LateAfter is a clock time on the logical day that starts at DayCutoff.
	LateAfter            time.Duration `yaml:"late_after" split_words:"true"`
	UseDirection         bool          `yaml:"use_direction" split_words:"true"`
	SinglePunchAsHalfDay bool          `yaml:"single_punch_as_half_day" split_words:"true"`
	HalfDayWeight        float64       `yaml:"half_day_weight" split_words:"true" validate:"gte=0,lte=1"`
	Weekends             []string      `yaml:"weekends" split_words:"true"`
	Holidays             []string      `yaml:"holidays" split_words:"true"`
	Eligibility          string        `yaml:"eligibility" split_words:"true" validate:"oneof=month first_punch"`
	Workers              int           `yaml:"workers" split_words:"true" validate:"min=0,max=64"`
}

// ReportConfig controls the output artifacts.
type ReportConfig struct {
	OutputDir      string `yaml:"output_dir" split_words:"true"`
	TimestampedDir bool   `yaml:"timestamped_dir" split_words:"true"`
	WorkbookName   string `yaml:"workbook_name" split_words:"true" validate:"required"`
	WriteCSV       bool   `yaml:"write_csv" split_words:"true"`
	CSVBOM         bool   `yaml:"csv_bom" split_words:"true"`
	GridSheets     bool   `yaml:"grid_sheets" split_words:"true"`
	EmptyTime      string `yaml:"empty_time" split_words:"true"`
	TimeFormat     string `yaml:"time_format" split_words:"true" validate:"required"`
	DateFormat     string `yaml:"date_format" split_words:"true" validate:"required"`
}

// TelemetryConfig enables run tracing and a Prometheus textfile of run counters.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" split_words:"true"`
	TracingEnabled bool    `yaml:"tracing_enabled" split_words:"true"`
	TraceFile      string  `yaml:"trace_file" split_words:"true"`
	SampleRatio    float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	MetricsEnabled bool    `yaml:"metrics_enabled" split_words:"true"`
	MetricsFile    string  `yaml:"metrics_file" split_words:"true"`
}

// Load builds the configuration from defaults, an optional YAML file, an optional
// .env file and ATTEND_* environment variables, in increasing precedence.
// An empty configFile searches the usual locations and tolerates none being present.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := configFile != ""
	if !explicit {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", configFile, err)
			}
		} else if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg; keys absent from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads .env from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"attendance.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

var validate = validator.New()

// Validate checks struct constraints and the semantic rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}

	if _, err := c.Input.Location(); err != nil {
		return err
	}
	if c.Input.Format == "fixed" {
		if _, err := ParseSpan(c.Input.EmployeeSpan); err != nil {
			return fmt.Errorf("input.employee_span: %w", err)
		}
		if _, err := ParseSpan(c.Input.TimestampSpan); err != nil {
			return fmt.Errorf("input.timestamp_span: %w", err)
		}
		for name, span := range map[string]string{"name_span": c.Input.NameSpan, "direction_span": c.Input.DirectionSpan} {
			if span == "" {
				continue
			}
			if _, err := ParseSpan(span); err != nil {
				return fmt.Errorf("input.%s: %w", name, err)
			}
		}
	} else if c.Input.EmployeeColumn == c.Input.TimestampColumn {
		return fmt.Errorf("input.employee_column and input.timestamp_column must differ")
	}

	if c.Policy.FullDayThreshold <= 0 {
		return fmt.Errorf("policy.full_day_threshold must be positive")
	}
	if c.Policy.DayCutoff < 0 || c.Policy.DayCutoff >= 24*time.Hour {
		return fmt.Errorf("policy.day_cutoff must be within [0, 24h)")
	}
	if c.Policy.LateAfter < 0 || c.Policy.LateAfter >= 24*time.Hour {
		return fmt.Errorf("policy.late_after must be within [0, 24h)")
	}
	if _, err := c.Policy.WeekendDays(); err != nil {
		return err
	}
	if _, err := c.Policy.HolidayDates(); err != nil {
		return err
	}

	if c.Telemetry.TracingEnabled && c.Telemetry.TraceFile == "" {
		return fmt.Errorf("telemetry.trace_file is required when tracing is enabled")
	}
	if c.Telemetry.MetricsEnabled && c.Telemetry.MetricsFile == "" {
		return fmt.Errorf("telemetry.metrics_file is required when metrics are enabled")
	}

	return nil
}

// Separator returns the column delimiter, accepting "tab" and a literal `\t`.
func (c InputConfig) Separator() string {
	switch strings.ToLower(c.Delimiter) {
	case "", "tab", `\t`:
		return "\t"
	case "comma":
		return ","
	case "semicolon":
		return ";"
	case "pipe":
		return "|"
	default:
		return c.Delimiter
	}
}

// Location resolves the configured time zone; empty means UTC.
func (c InputConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("input.timezone: %w", err)
	}
	return loc, nil
}

// Span is a half-open [Start, End) character range of a fixed-width line.
type Span struct {
	Start int
	End   int
}

// ParseSpan parses "start:end".
func ParseSpan(s string) (Span, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Span{}, fmt.Errorf("invalid span %q, expected start:end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Span{}, fmt.Errorf("invalid span start in %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Span{}, fmt.Errorf("invalid span end in %q: %w", s, err)
	}
	if start < 0 || end <= start {
		return Span{}, fmt.Errorf("invalid span %q, need 0 <= start < end", s)
	}
	return Span{Start: start, End: end}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// WeekendDays parses the configured weekend day names.
func (p PolicyConfig) WeekendDays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(p.Weekends))
	for _, name := range p.Weekends {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("policy.weekends: unknown weekday %q", name)
		}
		days = append(days, d)
	}
	return days, nil
}

// HolidayDates parses the configured YYYY-MM-DD holidays.
func (p PolicyConfig) HolidayDates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(p.Holidays))
	for _, h := range p.Holidays {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("policy.holidays: invalid date %q", h)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/attendance_processor.log",
		},
		Input: InputConfig{
			File:            "AGL_0001.TXT",
			Encodings:       []string{"utf-8", "utf-8-sig", "latin1", "cp1252"},
			Format:          "delimited",
			Delimiter:       "tab",
			SkipLines:       5,
			EmployeeColumn:  2,
			NameColumn:      3,
			TimestampColumn: 9,
			DirectionColumn: 10,
			EmployeeIDWidth: 8,
			TimestampLayouts: []string{
				"2006-01-02 15:04:05",
				"02/01/2006 15:04:05",
				"01/02/2006 15:04:05",
				"2006/01/02 15:04:05",
				"02-01-2006 15:04:05",
				"2006-01-02 15:04",
				"02/01/2006 15:04",
			},
			Timezone:    "UTC",
			InPatterns:  []string{"time in", "check in", "entry", "in"},
			OutPatterns: []string{"time out", "check out", "exit", "out"},
		},
		Policy: PolicyConfig{
			FullDayThreshold: 8 * time.Hour,
			HalfDayWeight:    0.5,
			Eligibility:      "month",
		},
		Report: ReportConfig{
			OutputDir:      ".",
			TimestampedDir: true,
			WorkbookName:   "attendance_report.xlsx",
			WriteCSV:       true,
			CSVBOM:         true,
			TimeFormat:     "15:04",
			DateFormat:     "2006-01-02",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "attendance-report",
			TraceFile:   "logs/traces.json",
			SampleRatio: 1.0,
			MetricsFile: "logs/attendance_report.prom",
		},
	}
}
