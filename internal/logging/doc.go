// Package logging assembles structured slog loggers used across Atenea.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and exposes run-ID context helpers so every line of one generation run can
// be correlated. Loggers write to stderr by default; stdout is reserved for
// the streamed output of the model process.
//
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
