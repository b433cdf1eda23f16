package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"attendcli/internal/app"
	"attendcli/internal/config"
	"attendcli/internal/dataprocessing"
	"attendcli/internal/errors"
	"attendcli/internal/files"
	"attendcli/internal/infrastructure"
	"attendcli/pkg/contracts"
	"attendcli/pkg/contracts/domain"
)

// options holds the parsed command line.
type options struct {
	file        string
	months      string
	interactive bool
	out         string
	configFile  string
	version     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("attendance-report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.file, "file", "", "attendance device export (default from config, AGL_0001.TXT)")
	fs.StringVar(&opts.file, "f", "", "shorthand for -file")
	fs.StringVar(&opts.months, "months", "", `months to report: "all" or YYYY-MM[,YYYY-MM...]`)
	fs.StringVar(&opts.months, "m", "", "shorthand for -months")
	fs.BoolVar(&opts.interactive, "interactive", false, "choose months from a menu")
	fs.BoolVar(&opts.interactive, "i", false, "shorthand for -interactive")
	fs.StringVar(&opts.out, "out", "", "output base directory")
	fs.StringVar(&opts.out, "o", "", "shorthand for -out")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.interactive && opts.months != "" {
		return nil, fmt.Errorf("-months and -interactive are mutually exclusive")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	var selection dataprocessing.Selection
	if opts.months != "" {
		if selection, err = dataprocessing.ParseSelection(opts.months); err != nil {
			fmt.Fprintf(stderr, "Error: invalid -months value: %v\n", err)
			return 2
		}
	} else {
		selection.Mode = dataprocessing.SelectInteractive
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	if opts.file != "" {
		cfg.Input.File = opts.file
	}
	if opts.out != "" {
		cfg.Report.OutputDir = opts.out
	}

	logger, err := infrastructure.InitializeLoggerWithConsole(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "Failed to initialize telemetry: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(infrastructure.EnsureRunID(ctx))
	defer cancel()

	logger.InfoContext(ctx, "Starting attendance report",
		slog.String("version", contracts.Version),
		slog.String("file", cfg.Input.File),
		slog.String("selection", string(selection.Mode)),
		slog.String("output_dir", cfg.Report.OutputDir))

	runner, err := app.NewRunner(cfg, logger, telemetry)
	if err != nil {
		return fail(ctx, logger, stderr, err)
	}

	ds, err := runner.Load(ctx, cfg.Input.File)
	if err != nil {
		return fail(ctx, logger, stderr, err)
	}

	if selection.Mode == dataprocessing.SelectInteractive {
		answer, ok := promptMonths(ctx, scanLines(ctx, stdin), stdout, ds)
		if !ok {
			fmt.Fprintln(stdout, "No months selected.")
			if ctx.Err() != nil {
				logger.InfoContext(ctx, "Interrupted at the month menu")
			} else {
				logger.InfoContext(ctx, "Operator quit the month menu")
			}
			return 0
		}
		selection.Input = answer
	}

	result, err := runner.Report(ctx, ds, selection)
	if err != nil {
		return fail(ctx, logger, stderr, err)
	}
	if result.Quit {
		fmt.Fprintln(stdout, "No months selected.")
		return 0
	}

	printResult(stdout, result)
	return 0
}

// scanLines feeds the lines of in to the returned channel, which closes at
// end of input.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// readLine waits for the next trimmed line. It reports false at end of input
// or when ctx is done.
func readLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return strings.TrimSpace(line), ok
	}
}

// promptMonths shows the month menu until the operator confirms a valid
// selection. It reports false when the operator quits, input ends or ctx is
// canceled.
func promptMonths(ctx context.Context, lines <-chan string, out io.Writer, ds *app.Dataset) (string, bool) {
	available := ds.Months()
	stats := make(map[domain.Month]dataprocessing.MonthStat, len(ds.Stats))
	for _, s := range ds.Stats {
		stats[s.Month] = s
	}

	for {
		fmt.Fprintf(out, "\nMonths available in %s:\n", ds.Path)
		for i, m := range available {
			s := stats[m]
			fmt.Fprintf(out, "%2d. %-15s (%4d records, %2d employees)\n", i+1, m.Title(), s.Records, s.Employees)
		}
		fmt.Fprint(out, "\nSelect months (e.g. 1,3 or 1-3), 'all', or 'quit': ")

		answer, ok := readLine(ctx, lines)
		if !ok {
			return "", false
		}

		res, err := dataprocessing.ParseMenuSelection(answer, available)
		if err != nil {
			fmt.Fprintf(out, "Invalid selection: %v\n", err)
			continue
		}
		if res.Quit {
			return "", false
		}
		for _, token := range res.Ignored {
			fmt.Fprintf(out, "Ignoring %q\n", token)
		}

		titles := make([]string, len(res.Months))
		for i, m := range res.Months {
			titles[i] = m.Title()
		}
		fmt.Fprintf(out, "Selected: %s\nProceed? [y/n]: ", strings.Join(titles, ", "))
		confirm, ok := readLine(ctx, lines)
		if !ok {
			return "", false
		}
		switch strings.ToLower(confirm) {
		case "y", "yes":
			return answer, true
		}
	}
}

func printResult(out io.Writer, result *app.Result) {
	fmt.Fprintf(out, "\nReports written to %s\n", result.Paths.ReportsDir)
	for _, f := range result.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	for _, gap := range result.Gaps {
		fmt.Fprintf(out, "Warning: no punches in %s, all employees reported Absent\n", gap.Title())
	}
}

// fail reports a fatal error and returns its exit code.
func fail(ctx context.Context, logger *slog.Logger, stderr io.Writer, err error) int {
	infrastructure.WithError(logger, err).ErrorContext(ctx, "Run failed")

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if path := errors.Path(err); path != "" && !strings.Contains(err.Error(), path) {
		fmt.Fprintf(stderr, "  path: %s\n", path)
	}
	if errors.IsType(err, errors.ErrTypeInput) {
		suggestExports(stderr, errors.Path(err))
	}
	if appErr, ok := errors.As(err); ok && appErr.Type == errors.ErrTypeOutput {
		if written, ok := appErr.Context["written"].([]string); ok && len(written) > 0 {
			fmt.Fprintln(stderr, "  files already written:")
			for _, f := range written {
				fmt.Fprintf(stderr, "    %s\n", f)
			}
		}
	}
	return errors.ExitCode(err)
}

// suggestExports lists the device exports next to a missing input file.
func suggestExports(w io.Writer, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return
	}
	found, err := files.NewDiscovery("").FindDeviceExports(filepath.Dir(path), files.DeviceExportPatterns)
	if err != nil || len(found) == 0 {
		return
	}
	fmt.Fprintln(w, "  device exports found:")
	for _, f := range found {
		fmt.Fprintf(w, "    %s (%s)\n", f.Path, f.ModTime.Format("2006-01-02 15:04"))
	}
	if latest, ok := files.GetLatestFile(found); ok {
		fmt.Fprintf(w, "  try: -file %s\n", latest.Path)
	}
}
