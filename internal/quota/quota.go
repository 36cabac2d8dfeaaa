// Package quota enforces per-user submission rate limits over a sliding
// window, answered from the submission journal rather than in-memory
// counters so limits survive restarts.
package quota

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/journal"
)

// Counter is the journal slice the limiter needs.
type Counter interface {
	CountSince(ctx context.Context, user string, since time.Time) (int, error)
}

var _ Counter = (journal.Journal)(nil)

// Limiter answers whether a user may submit another document.
// A nil Limiter allows everything.
type Limiter struct {
	counter Counter
	max     int
	window  time.Duration
	now     func() time.Time // injected for tests
}

// NewLimiter builds a limiter allowing max submissions per user per
// window. A non-positive max or missing counter disables limiting by
// returning nil.
func NewLimiter(counter Counter, max int, window time.Duration) *Limiter {
	if max <= 0 || counter == nil {
		return nil
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Limiter{counter: counter, max: max, window: window, now: time.Now}
}

// Check returns nil when user is under quota, a validation-class error
// with a retry_after hint when the window is full, or a store error when
// the journal cannot be read.
func (l *Limiter) Check(ctx context.Context, user string) error {
	if l == nil {
		return nil
	}
	since := l.now().Add(-l.window)
	n, err := l.counter.CountSince(ctx, user, since)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "count submissions for quota").
			WithContext("user", user).
			Build()
	}
	if n < l.max {
		return nil
	}
	return errors.ValidationError("submission quota exceeded").
		RateLimit().
		WithContext("user", user).
		WithContext("limit", l.max).
		WithContext("window", l.window.String()).
		WithContext("retry_after", l.window.String()).
		Build()
}

// Remaining reports how many submissions user has left in the current
// window, or -1 when the limiter is disabled. Journal errors degrade to
// zero so status pages stay conservative.
func (l *Limiter) Remaining(ctx context.Context, user string) int {
	if l == nil {
		return -1
	}
	n, err := l.counter.CountSince(ctx, user, l.now().Add(-l.window))
	if err != nil {
		return 0
	}
	if left := l.max - n; left > 0 {
		return left
	}
	return 0
}
