// Package logging wraps log/slog with exporter-wide defaults: structured
// JSON output to stderr, environment-based level configuration (LOG_LEVEL),
// and module/version context on every record.
//
// Set the default logger early in main():
//
//	logging.SetDefaultStructuredLogger("osinvd", version)
//	slog.Info("gather cycle complete", "duration_ms", 1250)
//
// The LOG_LEVEL environment variable controls verbosity (DEBUG, INFO, WARN,
// ERROR, case-insensitive); unset defaults to INFO. Debug level records
// include source location.
package logging
