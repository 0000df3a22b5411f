// Package retry repeats operations that fail with errors marked Retriable
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
)

// DelayFn produces the delays of one sequence of attempts. Each call returns
// the delay before the next attempt, or false when no attempts are left. The
// first call must return true; its delay precedes the first attempt.
type DelayFn func() (delay time.Duration, ok bool)

// Config defines a sequence of delays between attempts
type Config interface {
	// Delays returns an independent sequence on every call
	Delays() DelayFn
}

// FixedConfig retries at a fixed interval
type FixedConfig struct {
	TryAfter    time.Duration // before the first attempt
	RetryAfter  time.Duration // before every other attempt
	MaxAttempts int           // 0 is unlimited
}

// Delays implements Config
func (c FixedConfig) Delays() DelayFn {
	attempts := 0
	return func() (time.Duration, bool) {
		attempts++
		switch {
		case attempts == 1:
			return c.TryAfter, true
		case c.MaxAttempts != 0 && attempts > c.MaxAttempts:
			return 0, false
		}
		return c.RetryAfter, true
	}
}

// Backoff retries immediately, then with delays growing from Min by Scale up
// to Max
type Backoff struct {
	Min         time.Duration
	Max         time.Duration
	Scale       float64
	MaxAttempts int // 0 is unlimited
}

// Delays implements Config
func (b Backoff) Delays() DelayFn {
	attempts := 0
	next := b.Min
	return func() (time.Duration, bool) {
		attempts++
		switch {
		case attempts == 1:
			return 0, true
		case b.MaxAttempts != 0 && attempts > b.MaxAttempts:
			return 0, false
		}
		delay := next
		next = time.Duration(float64(next) * b.Scale)
		if next > b.Max {
			next = b.Max
		}
		return delay, true
	}
}

type retriable struct {
	err error
}

func (r retriable) Error() string {
	return r.err.Error()
}

func (r retriable) Unwrap() error {
	return r.err
}

// Retriable marks an error to be retried by Do. Returns nil for nil.
func Retriable(err error) error {
	if err == nil {
		return nil
	}
	return retriable{err: err}
}

// Do calls f until it succeeds, fails with an error not marked Retriable, the
// delays run out or the context is closed. Returns the last error of f
// unwrapped, or the context error.
func Do(ctx context.Context, c Config, f func() error) error {
	delays := c.Delays()
	var last retriable
	for attempt := 1; ; attempt++ {
		delay, ok := delays()
		if !ok {
			if attempt == 1 {
				panic("retry: no first attempt")
			}
			tlog.Get(ctx).Debug("Giving up", zap.Int("attempts", attempt-1), zap.Error(last.err))
			return last.err
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}

		err := f()
		if !errors.As(err, &last) {
			return err
		}
		if ctx.Err() != nil {
			return last.err
		}
		tlog.Get(ctx).Debug("Will retry", zap.Int("attempt", attempt), zap.Error(last.err))
	}
}

// Do1 is Do for functions returning a value
func Do1[T any](ctx context.Context, c Config, f func() (T, error)) (T, error) {
	var t T
	err := Do(ctx, c, func() error {
		var err error
		t, err = f()
		return err
	})
	return t, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
