// Package logging constructs the slog loggers used across reelsync.
//
// Two output formats are supported: a human-oriented console format used when
// stdout is a terminal, and line-delimited JSON for log files and piped
// output. Attr helpers keep field names consistent between components.
package logging
