package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
)

var terminationSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP}

// handleSignals returns nil on the first termination signal, or the context
// error once the context is closed
func handleSignals(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals...)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		tlog.Get(ctx).Info("Received signal, shutting down", zap.Stringer("signal", sig))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
