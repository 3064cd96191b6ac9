// Package logging builds the slog loggers used across veil.
//
// Two output formats are supported: a console format that prefixes each line
// with a timestamp, level, and the component attribute, and a JSON format for
// machine consumption. Records can be mirrored to a log file alongside the
// primary writer.
package logging
