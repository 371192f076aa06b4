// Package logger configures the process-wide structured logger and carries
// request-scoped loggers through a context.Context.
//
// It uses the standard library log/slog package with a JSON handler.
package logger
