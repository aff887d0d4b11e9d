package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailhub/foundation/core/logger"
)

// WaitFunc blocks for d or until ctx is done, whichever comes first.
type WaitFunc func(ctx context.Context, d time.Duration) error

// RetryObserver is notified before every re-attempt.
type RetryObserver interface {
	ObserveRetry(request string, attempt int, err error)
}

type retryBehavior struct {
	logger       *slog.Logger
	wait         WaitFunc
	observer     RetryObserver
	finalAttempt bool
}

// RetryOption configures the Retry behavior.
type RetryOption func(*retryBehavior)

// WithRetryLogger sets the logger for retry attempts.
func WithRetryLogger(log *slog.Logger) RetryOption {
	return func(b *retryBehavior) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithRetryWait replaces the timer used between attempts. Tests use it to
// record delays instead of sleeping.
func WithRetryWait(wait WaitFunc) RetryOption {
	return func(b *retryBehavior) {
		if wait != nil {
			b.wait = wait
		}
	}
}

// WithRetryObserver reports each re-attempt, e.g. to a metrics collector.
func WithRetryObserver(o RetryObserver) RetryOption {
	return func(b *retryBehavior) {
		b.observer = o
	}
}

// WithFinalAttempt makes the behavior invoke the pipeline one more time,
// unconditionally, after the attempt budget is spent, and return that
// result instead of a *RetryExhaustedError. Legacy services depend on it.
func WithFinalAttempt() RetryOption {
	return func(b *retryBehavior) {
		b.finalAttempt = true
	}
}

// Retry re-invokes the rest of the pipeline for Retryable requests that fail
// with a retryable error, waiting according to the request's backoff between
// attempts. Non-retryable failures are returned immediately and unchanged.
// When every attempt fails the last error is returned inside a *RetryExhaustedError.
func Retry(opts ...RetryOption) Behavior {
	b := &retryBehavior{
		logger: logger.Discard(),
		wait:   sleep,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *retryBehavior) Handle(ctx context.Context, call *Call, next Next) (any, error) {
	r, ok := call.Request.(Retryable)
	if !ok {
		return next(ctx)
	}

	policy := r.RetryPolicy()
	attempts := policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := next(ctx)
		if err == nil {
			if attempt > 1 {
				b.logger.InfoContext(ctx, "request succeeded after retry",
					logger.Request(call.Name),
					logger.Attempt(attempt))
			}
			return res, nil
		}
		lastErr = err

		if !policy.IsRetryable(err) {
			return res, err
		}
		if attempt == attempts {
			break
		}

		delay := policy.Delay(attempt)
		b.logger.WarnContext(ctx, "retrying request",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Attempt(attempt),
			logger.MaxAttempts(attempts),
			logger.Delay(delay),
			logger.ErrorKind(Classify(err).String()),
			logger.Error(err))
		if b.observer != nil {
			b.observer.ObserveRetry(call.Name, attempt, err)
		}

		if err := b.wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	b.logger.WarnContext(ctx, "retry attempts exhausted",
		logger.Request(call.Name),
		logger.MaxAttempts(attempts),
		logger.Error(lastErr))

	if b.finalAttempt {
		return next(ctx)
	}
	return nil, &RetryExhaustedError{Request: call.Name, Attempts: attempts, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
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
