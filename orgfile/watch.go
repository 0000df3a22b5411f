package orgfile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/retry"
	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
)

// ReloadFn receives the records of a data file after it has changed
type ReloadFn func(ctx context.Context, records []record.Record) error

// DefaultReloadRetry is how a Watcher retries loading a data file that fails
// to load, as happens while an editor is still writing it
var DefaultReloadRetry = retry.Backoff{Min: 10 * time.Millisecond, Max: 200 * time.Millisecond, Scale: 2, MaxAttempts: 5}

// Watcher follows changes of a data file
type Watcher struct {
	// Retry controls reloading after a change. Defaults to DefaultReloadRetry.
	Retry retry.Config

	path string
	w    *fsnotify.Watcher
}

// NewWatcher starts watching the data file. Changes made after NewWatcher
// returns are reported by Run.
func NewWatcher(path string) (*Watcher, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// The directory is watched, since files replaced by rename lose their watches
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{Retry: DefaultReloadRetry, path: filepath.Clean(path), w: w}, nil
}

// Run reloads the data file on every change and passes the records to fn,
// until the context is closed or fn fails. Contents that fail to load are
// retried, then logged and skipped. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, fn ReloadFn) error {
	defer w.w.Close()

	logger := tlog.Get(ctx).With(zap.String("file", w.path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			records, err := retry.Do1(ctx, w.Retry, func() ([]record.Record, error) {
				records, err := Load(w.path)
				return records, retry.Retriable(err)
			})
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				logger.Warn("Failed to reload data file", zap.Error(err))
				continue
			}
			logger.Debug("Data file reloaded", zap.Int("records", len(records)))
			if err := fn(ctx, records); err != nil {
				return err
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("failed to watch %s: %w", w.path, err)
		}
	}
}

// Watch is a shortcut for NewWatcher followed by Run
func Watch(ctx context.Context, path string, fn ReloadFn) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
