// Package ratelimit provides per-key sliding-window admission control in
// front of sensitive endpoints. The in-process limiter is best effort and
// explicitly not a security boundary; the Redis limiter serves multi-instance
// deployments behind the same interface.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed           bool
	Remaining         int // admissions left in the current window
	RetryAfterSeconds int // >= 1 when rejected
}

// Limiter admits or rejects a request for a key within a window.
type Limiter interface {
	// Admit records one request for key and reports whether it is allowed.
	// The window resets once it elapses; rejected requests carry the seconds
	// the caller should wait before retrying.
	Admit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// retryAfterSeconds computes the advertised backoff, minimum 1 second.
func retryAfterSeconds(until time.Duration) int {
	secs := int((until + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
