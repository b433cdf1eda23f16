// Package config provides centralized configuration management for the attendance
// report generator. It handles loading configuration from multiple sources, validation,
// and resolution of the output paths of a run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables with the ATTEND_ prefix (highest priority)
//  2. A .env file in the working directory
//  3. A YAML file (-config flag, or attendance.yaml / config.yaml / configs/config.yaml)
//  4. Default values (lowest priority)
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	ATTEND_INPUT_ENCODINGS=utf-8,cp1252
//	ATTEND_INPUT_SKIP_LINES=5
//	ATTEND_POLICY_FULL_DAY_THRESHOLD=8h
//	ATTEND_POLICY_DAY_CUTOFF=4h
//	ATTEND_POLICY_WEEKENDS=fri,sat
//	ATTEND_REPORT_OUTPUT_DIR=/srv/reports
//	ATTEND_LOGGING_LEVEL=debug
//
// # Path Management
//
// ResolvePaths derives all output locations of a run from the report section:
//
//	paths := config.ResolvePaths(cfg, time.Now())
//	csvPath := paths.DetailCSVPath("2023-10")
//	workbook := paths.WorkbookPath
package config
