// Package context derives contexts fitted to a test's lifetime.
package context

import (
	"context"
	"testing"
	"time"
)

// WithTest bounds ctx by the test's own deadline, less one second so
// cleanup still has time to run before the harness kills the test.
func WithTest(ctx context.Context, t *testing.T) (context.Context, func()) {
	deadline, ok := t.Deadline()
	if !ok {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, deadline.Add(-time.Second))
}
