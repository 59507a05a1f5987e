// Package ratelimit implements fixed-window request counting keyed by an
// arbitrary string (route class + client identifier). Two stores exist behind
// one interface: an in-process map for single-instance deployments and tests,
// and Redis for deployments with more than one instance.
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store counts a hit against key and reports whether it fits within limit for
// the current window. Exactly limit calls succeed per window; the limit+1-th
// is rejected with ResetAt set to the window start plus the window length.
type Store interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// RetryAfter returns the whole seconds until the window resets, never below 1.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
