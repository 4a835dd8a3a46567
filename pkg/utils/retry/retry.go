package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry is the error a task returns to ask Blocking for another attempt.
var ErrRetry = errors.New("retry")

// ErrExhausted is returned from Blocking when its Backoff permits no more attempts.
var ErrExhausted = errors.New("no more retries")

// Backoff is a (blocking) function which waits until the next attempt may start.
//
// # Args
//
// - context: if the context is canceled while waiting, Backoff returns ctx.Err().
//
// # Returns
//
// - error: nil to go on with the next attempt, non-nil to stop retrying.
type Backoff func(context.Context) error

// StaticBackoff returns a Backoff waiting a fixed interval between attempts.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff returns a Backoff whose wait grows by factor r each attempt.
//
// The N-th wait (counting from zero) is initialInterval * r^N.
func ExponentialBackoff(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer func() {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			next := float64(interval) * r
			interval = time.Duration(int64(next))
			return nil
		}
	}
}

// MaxAttempts limits b to n waits. The n+1-th wait fails with ErrExhausted,
// so a task run under Blocking is attempted at most n times.
func MaxAttempts(n int, b Backoff) Backoff {
	remain := n
	return func(ctx context.Context) error {
		if remain <= 0 {
			return ErrExhausted
		}
		remain -= 1
		return b(ctx)
	}
}

// Blocking runs f until it succeeds or gives an error other than ErrRetry.
//
// Each attempt (the first one included) starts after waiting on b.
//
// # Args
//
// - ctx: context
//
// - b: backoff deciding the pace of attempts
//
// - f: task. Returning ErrRetry requests another attempt after backoff.
//
// # Returns
//
// - T: value from the last attempt of f. When the backoff stops retrying,
// this is the value of the attempt before that.
//
// - error: error from f, or from b when it stops retrying (ErrExhausted,
// context errors).
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	last := *new(T)
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		var err error
		last, err = f()
		if err == nil {
			return last, nil
		}
		if errors.Is(err, ErrRetry) {
			continue
		}
		return last, err
	}
}
