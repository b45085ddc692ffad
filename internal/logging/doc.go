// Package logging builds the slog loggers used across octlabel.
//
// It supports console and JSON output, optional file logging next to the
// annotation store, and small helpers (attribute constructors, component
// loggers, a no-op logger) so packages never construct handlers themselves.
package logging
