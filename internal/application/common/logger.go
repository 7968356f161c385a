package common

import "context"

// RunLogger provides logging for one scheduling run. The concrete
// implementation lives in infrastructure/logging; stages receive it
// through the context so pure scheduling code has no logger dependency.
type RunLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger RunLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op
// logger if not found
func LoggerFromContext(ctx context.Context) RunLogger {
	if logger, ok := ctx.Value(loggerKey).(RunLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
}
