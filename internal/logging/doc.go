// Package logging assembles structured slog loggers and formatting helpers used
// across pagesig.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (label, image_id, session_id)
// so audit and calibration code emit data with the same shape. Log output goes
// to stderr; stdout is reserved for reports. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
