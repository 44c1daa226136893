// Package retry runs an operation a bounded number of times with a fixed
// delay schedule between attempts. Attempts are strictly sequential. The
// schedule is either linear (n × 1s) or exponential (2^(n-1) × 1s) where n is
// the number of the attempt that just failed. There is no jitter and no cap.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BaseDelay is the unit the schedules are multiplied by.
const BaseDelay = time.Second

// Strategy selects the delay schedule.
type Strategy string

const (
	Linear      Strategy = "linear"
	Exponential Strategy = "exponential"
)

// Delay returns the wait after the given failed attempt (1-based).
func (s Strategy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if s == Linear {
		return time.Duration(attempt) * BaseDelay
	}
	return time.Duration(1<<uint(attempt-1)) * BaseDelay
}

// Policy bounds how many times an operation is tried.
type Policy struct {
	Enabled     bool
	MaxAttempts int
	Strategy    Strategy
}

// Attempts is the total number of tries the policy allows. A disabled
// policy always tries exactly once.
func (p Policy) Attempts() int {
	if !p.Enabled || p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Schedule implements backoff.BackOff for a Strategy.
type Schedule struct {
	strategy Strategy
	failed   int
}

// NewSchedule returns a schedule positioned before the first attempt.
func NewSchedule(s Strategy) *Schedule {
	return &Schedule{strategy: s}
}

// NextBackOff records one more failed attempt and returns the wait before
// the next one.
func (s *Schedule) NextBackOff() time.Duration {
	s.failed++
	return s.strategy.Delay(s.failed)
}

// Reset rewinds the schedule.
func (s *Schedule) Reset() {
	s.failed = 0
}

// ExhaustedError is returned when every attempt failed. It unwraps to the
// error from the last attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	if e.Attempts == 1 {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Operation is a single attempt. attempt is 1-based.
type Operation func(ctx context.Context, attempt int) error

// NotifyFunc is called after a failed attempt that will be retried.
type NotifyFunc func(err error, attempt int, wait time.Duration)

// Option customises Do.
type Option func(*runner)

type runner struct {
	timer  backoff.Timer
	notify NotifyFunc
}

// WithTimer replaces the timer used to wait between attempts.
func WithTimer(t backoff.Timer) Option {
	return func(r *runner) { r.timer = t }
}

// WithNotify registers a callback for retried failures.
func WithNotify(fn NotifyFunc) Option {
	return func(r *runner) { r.notify = fn }
}

// Do runs op until it succeeds or the policy's attempts are used up. Waiting
// between attempts stops early if ctx is done, in which case ctx.Err() is
// returned.
func Do(ctx context.Context, p Policy, op Operation, opts ...Option) error {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}

	attempts := p.Attempts()
	attempt := 0
	b := backoff.WithContext(
		backoff.WithMaxRetries(NewSchedule(p.Strategy), uint64(attempts-1)),
		ctx,
	)

	var notify backoff.Notify
	if r.notify != nil {
		notify = func(err error, wait time.Duration) {
			r.notify(err, attempt, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(func() error {
		attempt++
		return op(ctx, attempt)
	}, b, notify, r.timer)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && err == ctx.Err() {
		return err
	}
	return &ExhaustedError{Attempts: attempt, Err: err}
}
