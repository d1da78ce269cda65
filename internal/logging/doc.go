// Package logging builds slog loggers with clipforge's console and JSON
// handlers and the standardized attribute keys used across the pipeline.
package logging
