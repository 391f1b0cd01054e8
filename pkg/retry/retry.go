// Package retry runs a unit of work with bounded attempts and exponential
// backoff, keeping timeouts apart from other failures in what it reports.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the number of tries before giving up.
	DefaultMaxAttempts = 3

	// DefaultUnit is the base backoff delay; attempt i waits Unit * 2^i.
	DefaultUnit = time.Second
)

// ErrTimeout marks a failure as a timeout for classification purposes.
// Callers that detect timeouts themselves can wrap it.
var ErrTimeout = errors.New("timed out")

// Error is the terminal failure after every attempt has been used.
type Error struct {
	Attempts int
	// Timeout is true when the last attempt failed by timing out.
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	kind := "error"
	if e.Timeout {
		kind = "timeout"
	}
	return fmt.Sprintf("gave up after %d attempts (last %s): %v", e.Attempts, kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timer is the wait primitive used between attempts. It matches backoff.Timer
// so tests can observe delays without sleeping.
type Timer = backoff.Timer

// Config controls a Controller.
type Config struct {
	MaxAttempts int
	Unit        time.Duration
	// AttemptTimeout bounds each individual attempt. Zero means no per-attempt bound.
	AttemptTimeout time.Duration
}

// Controller wraps operations with the retry policy.
type Controller struct {
	config Config
	timer  Timer
	logger *zap.Logger
}

// New creates a Controller. Zero config fields take defaults.
func New(config Config, logger *zap.Logger) *Controller {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Unit <= 0 {
		config.Unit = DefaultUnit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{config: config, logger: logger}
}

// WithTimer returns a copy of the controller that waits on t.
func (c *Controller) WithTimer(t Timer) *Controller {
	cp := *c
	cp.timer = t
	return &cp
}

// MaxAttempts returns the configured attempt bound.
func (c *Controller) MaxAttempts() int {
	return c.config.MaxAttempts
}

// Do runs op until it succeeds or the attempts run out. Each attempt gets its
// own context derived from ctx and bounded by AttemptTimeout.
func Do[T any](ctx context.Context, c *Controller, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result   T
		attempt  int
		lastErr  error
		timedOut bool
	)

	operation := func() error {
		attemptCtx, cancel := c.attemptContext(ctx)
		defer cancel()

		out, err := op(attemptCtx)
		attempt++
		if err == nil {
			result = out
			return nil
		}

		lastErr = err
		timedOut = IsTimeout(err)
		if ctx.Err() != nil {
			// the caller gave up, stop regardless of attempts left
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		fields := []zap.Field{
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.config.MaxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		}
		if IsTimeout(err) {
			c.logger.Warn("attempt timed out, retrying", fields...)
			return
		}
		c.logger.Warn("attempt failed, retrying", fields...)
	}

	err := backoff.RetryNotifyWithTimer(operation, c.policy(ctx), notify, c.timer)
	if err == nil {
		return result, nil
	}

	var zero T
	if lastErr == nil {
		// context was cancelled while waiting, before any attempt failed
		lastErr = err
	}
	return zero, &Error{Attempts: attempt, Timeout: timedOut, Err: lastErr}
}

func (c *Controller) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.config.Unit
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = c.config.Unit << 20
	exp.MaxElapsedTime = 0

	retries := uint64(c.config.MaxAttempts - 1)
	return backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx)
}

func (c *Controller) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.AttemptTimeout)
}

// IsTimeout reports whether err represents a timeout rather than some other failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
