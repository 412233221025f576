// Package logging builds the slog loggers used by mikanto.
//
// Two handlers are available: a single-line console format meant for cron
// mail and terminals, and a JSON format for log shippers. Both can tee to
// a log file under the configured log directory. Context helpers tag lines
// with the run ID, subscription title, and pipeline stage carried by the
// request context.
package logging
