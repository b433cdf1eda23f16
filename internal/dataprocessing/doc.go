// Package dataprocessing turns a biometric device export into monthly
// attendance tables. It is the pure core of the report pipeline: nothing in
// this package writes files or logs per-line diagnostics; results and
// diagnostics are returned to the caller.
//
// # Stages
//
//  1. Decode: raw bytes are decoded under a prioritized list of encodings.
//  2. Parser: each data line becomes a domain.PunchRecord or a LINE error.
//  3. BuildSessions: punches are grouped per employee and logical day and
//     classified as Present, HalfDay or Incomplete.
//  4. ResolveMonths: a Selection (all, explicit, or a menu answer) becomes
//     the list of target months.
//  5. Aggregator: per target month, one row per employee and eligible day
//     (filling Absent and Off) and one MonthlySummary per employee.
//
// # Usage
//
//	decoded, err := dataprocessing.Decode(raw, cfg.Input.Encodings)
//	parser, err := dataprocessing.NewParser(cfg.Input)
//	parsed := parser.Parse(decoded.Text)
//	sessions, err := dataprocessing.BuildSessions(ctx, parsed.Records, cfg.Policy)
//	res, err := dataprocessing.ResolveMonths(selection, sessions.Months())
//	agg, err := dataprocessing.NewAggregator(cfg.Policy, logger)
//	reports, gaps, err := agg.Aggregate(ctx, sessions, res.Months)
//
// # Logical days
//
// A punch whose time of day is before policy.day_cutoff belongs to the
// previous date, so a night shift that ends after midnight forms one session.
// With the default cutoff of zero, logical days are calendar days.
//
// # Determinism
//
// Given the same punches, policy and months, Aggregate returns identical
// reports regardless of input order or worker count.
package dataprocessing
