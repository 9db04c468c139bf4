package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is matched by errors returned when a policy runs out of attempts.
var ErrExhausted = errors.New("attempt budget exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// NotifyFunc is called after every failed attempt that will be followed by another one.
type NotifyFunc func(attempt int, err error)

// Policy holds retry configuration.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	sleep  SleepFunc
	notify NotifyFunc
}

// Option is a functional option for retry configuration.
type Option func(*Policy)

// Fixed returns a policy that makes up to attempts tries with a constant delay between them.
func Fixed(attempts int, delay time.Duration, opts ...Option) Policy {
	p := Policy{
		MaxAttempts: attempts,
		Delay:       delay,
		Multiplier:  1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithMultiplier sets the backoff multiplier. Values <= 1 keep the delay fixed.
func WithMultiplier(m float64) Option {
	return func(p *Policy) {
		p.Multiplier = m
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.MaxDelay = d
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(p *Policy) {
		p.sleep = fn
	}
}

// WithNotify registers a callback invoked after each failed attempt that is retried.
func WithNotify(fn NotifyFunc) Option {
	return func(p *Policy) {
		p.notify = fn
	}
}

// Sleep blocks for d. It returns early with the context error when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs operation up to MaxAttempts times. The attempt number passed to
// operation starts at 1.
//
// Errors wrapped with Fatal() are returned immediately. When every attempt
// fails the returned error matches ErrExhausted and wraps the last failure.
func (p Policy) Do(ctx context.Context, operation func(attempt int) error) error {
	var lastErr error
	delay := p.Delay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := operation(attempt)
		if err == nil {
			return nil
		}
		if IsFatal(err) {
			return err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if p.notify != nil {
			p.notify(attempt, err)
		}
		if err := p.wait(ctx, delay); err != nil {
			return fmt.Errorf("cancelled after %d attempts: %w", attempt, err)
		}
		delay = p.next(delay)
	}

	return &ExhaustedError{Attempts: p.MaxAttempts, Err: lastErr}
}

// Poll calls condition until it reports done, returns a Fatal error, or the
// attempt budget runs out. A non-fatal error counts as a failed attempt.
func (p Policy) Poll(ctx context.Context, condition func(attempt int) (bool, error)) error {
	return p.Do(ctx, func(attempt int) error {
		done, err := condition(attempt)
		if err != nil {
			return err
		}
		if !done {
			return errNotDone
		}
		return nil
	})
}

var errNotDone = errors.New("condition not met")

func (p Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (p Policy) next(d time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return d
	}
	d = time.Duration(float64(d) * p.Multiplier)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// ExhaustedError is returned when all attempts of a policy failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	if e.Err == nil || errors.Is(e.Err, errNotDone) {
		return fmt.Sprintf("gave up after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// IsExhausted checks if err reports a spent attempt budget.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
// Operations that encounter fatal errors will not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
