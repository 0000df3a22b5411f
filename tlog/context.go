package tlog

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

var discard = zap.NewNop()

// Get returns the logger of ctx. Without one, log entries are discarded.
func Get(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	if !ok {
		return discard
	}
	return logger
}

// WithLogger returns ctx carrying logger
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With returns ctx whose logger adds fields to every entry
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}
