package contextutil

import (
	"context"
	"time"
)

// DefaultTimeout bounds a whole connector operation (check, discover).
var DefaultTimeout = 30 * time.Second

// ContainerStartupTimeout bounds how long a fixture waits for a database
// container to report healthy.
var ContainerStartupTimeout = 60 * time.Second

// WithTimeout returns ctx bounded by timeout, or DefaultTimeout when none is given.
func WithTimeout(ctx context.Context, timeout ...time.Duration) (context.Context, context.CancelFunc) {
	t := DefaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		t = timeout[0]
	}
	return context.WithTimeout(ctx, t)
}

// WithQueryTimeout bounds a single health-check query (5 seconds).
func WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// WithTeardownTimeout bounds container termination (30 seconds).
func WithTeardownTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
