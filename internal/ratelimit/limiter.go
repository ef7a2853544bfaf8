// Package ratelimit gates SOS triggers per client origin with a fixed
// window counter. Every call counts, admitted or not, so a caller that keeps
// retrying stays blocked until its window closes.
package ratelimit

import (
	"context"
	"time"
)

// Limiter performs one atomic check-and-increment for key.
type Limiter interface {
	Admit(ctx context.Context, key string) (Decision, error)
}

type Decision struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
}

func (d Decision) Remaining() int {
	if d.Count >= d.Limit {
		return 0
	}
	return d.Limit - d.Count
}

// RetryAfter is how long the caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || !d.ResetAt.After(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

type Clock func() time.Time
