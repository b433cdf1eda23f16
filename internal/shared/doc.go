// Package shared holds helpers used across packages that belong to no single
// stage of the pipeline.
//
// The testutil subpackage captures slog output in memory so tests can assert
// on diagnostics:
//
//	logger, handler := testutil.NewTestLogger(t)
//	runner, _ := app.NewRunner(cfg, logger, nil)
//	// ...
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Skipped malformed line")
package shared
