// Package logger builds configured slog loggers: JSON for production log
// aggregation, text for local development.
package logger
