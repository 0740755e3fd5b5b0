package logger

import (
	"context"

	"go.uber.org/zap"
)

func NewLogger() (*zap.Logger, error) {
	// Use production logger by default — structured, performant.
	return zap.NewProduction()
}

type loggerContextKey struct{}

// WithLogger returns a context carrying the request-scoped logger.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext extracts the request-scoped logger, falling back to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
