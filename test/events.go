package test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// EventTimeout is how long Receive and AssertEvents wait for each event
var EventTimeout = 3 * time.Second

// Receive waits for the next value on ch. The second return value is false if
// the timeout expired or the channel was closed, which fails the test.
func Receive[T any](t *testing.T, ch <-chan T) (T, bool) {
	select {
	case v, ok := <-ch:
		assert.True(t, ok, "channel closed")
		return v, ok
	case <-time.After(EventTimeout):
		var zero T
		assert.Fail(t, "timeout waiting for event")
		return zero, false
	}
}

// AssertEvents asserts that the expected values arrive on ch in order, and
// that no unexpected values are queued after them
func AssertEvents[T any](t *testing.T, ch <-chan T, expected ...T) bool {
	for i, e := range expected {
		v, ok := Receive(t, ch)
		if !ok {
			return false
		}
		if !assert.Equal(t, e, v, "event %d", i) {
			return false
		}
	}
	select {
	case v, ok := <-ch:
		if ok {
			assert.Fail(t, "unexpected event", "%#v", v)
			return false
		}
	default:
	}
	return true
}
