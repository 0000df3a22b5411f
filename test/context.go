package test

import (
	"context"
	"testing"

	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Context returns a context carrying a logger that writes to the test log.
// The context is closed when the test finishes.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(tlog.WithLogger(context.Background(), tlog.NewForTesting(t)))
	t.Cleanup(cancel)
	return ctx
}

// Observed is Context with every log entry also kept in memory for
// assertions
func Observed(t *testing.T) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(zapcore.NewTee(tlog.NewForTesting(t).Core(), core))
	ctx, cancel := context.WithCancel(tlog.WithLogger(context.Background(), logger))
	t.Cleanup(cancel)
	return ctx, logs
}
