package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/ridge/orgkit/test"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(errors.New("boom")))
	require.Equal(t, 3, ExitCode(ExitError{Code: 3, Err: errors.New("not found")}))
	require.Equal(t, 3, ExitCode(fmt.Errorf("wrapped: %w", ExitError{Code: 3, Err: errors.New("not found")})))
}

func TestTask(t *testing.T) {
	ctx := test.Context(t)
	errBoom := errors.New("boom")

	require.NoError(t, Task(ctx, func(ctx context.Context) error { return nil }))
	require.ErrorIs(t, Task(ctx, func(ctx context.Context) error { return errBoom }), errBoom)
}

func TestServerTask(t *testing.T) {
	ctx, cancel := context.WithCancel(test.Context(t))
	task := serverTask(func(ctx context.Context) error {
		<-ctx.Done()
		return fmt.Errorf("stopped: %w", ctx.Err())
	})
	cancel()
	require.NoError(t, task(ctx))

	errBoom := errors.New("boom")
	require.ErrorIs(t, serverTask(func(ctx context.Context) error { return errBoom })(test.Context(t)), errBoom)
}

func TestHandleSignals(t *testing.T) {
	ctx, cancel := context.WithCancel(test.Context(t))
	cancel()
	require.ErrorIs(t, handleSignals(ctx), context.Canceled)

	// keeps SIGHUP from terminating the test process before handleSignals
	// subscribes to it
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGHUP)
	defer signal.Stop(guard)

	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		done <- handleSignals(test.Context(t))
	}()
	<-ready
	for {
		require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}
