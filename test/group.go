package test

import (
	"context"
	"errors"
	"testing"

	"github.com/ridge/parallel"
	"github.com/stretchr/testify/require"
)

// Group returns a parallel.Group running under Context(t). The group is
// stopped at the end of the test, and any error it finished with other than
// context.Canceled fails the test.
func Group(t *testing.T) *parallel.Group {
	return GroupOf(t, Context(t))
}

// GroupOf is Group running under ctx
func GroupOf(t *testing.T, ctx context.Context) *parallel.Group {
	group := parallel.NewGroup(ctx)
	t.Cleanup(func() {
		group.Exit(nil)
		err := group.Wait()
		if errors.Is(err, context.Canceled) {
			return
		}
		require.NoError(t, err)
	})
	return group
}
