// Package app runs the attendance report pipeline.
//
// A Runner owns the configured stages and executes them in order:
//
//  1. Validate and read the device export
//  2. Decode it with the first candidate encoding that fits
//  3. Parse punch records, skipping malformed lines with a diagnostic
//  4. Build per-employee, per-logical-day sessions
//  5. Resolve the month selection against the months present
//  6. Aggregate month reports
//  7. Export CSVs and the workbook
//
// Each stage runs in its own trace span and records its duration. Skipped
// lines, encoding fallbacks and month gaps are logged as warnings and never
// stop the run; everything else surfaces as a classified *errors.AppError.
//
// Non-interactive use:
//
//	runner, err := app.NewRunner(cfg, logger, telemetry)
//	result, err := runner.Run(ctx, app.Request{File: path, Selection: sel})
//
// Interactive use splits the run so the caller can show the month menu
// between loading and reporting:
//
//	ds, err := runner.Load(ctx, path)
//	// show ds.Stats, read the answer
//	result, err := runner.Report(ctx, ds, dataprocessing.Selection{
//	    Mode:  dataprocessing.SelectInteractive,
//	    Input: answer,
//	})
package app
