package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retailhub/foundation/core/logger"
)

var (
	// ErrNotReady wraps every readiness failure.
	ErrNotReady = errors.New("service not ready")

	// ErrCheckPanic wraps a panic recovered from a check.
	ErrCheckPanic = errors.New("check panicked")
)

// CheckFunc probes one dependency.
// pg.Healthcheck, redis.Healthcheck, mongo.Healthcheck and sqldb.Healthcheck return one.
type CheckFunc func(ctx context.Context) error

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   CheckFunc
}

// NewCheck names fn.
func NewCheck(name string, fn CheckFunc) Check {
	return Check{Name: name, Fn: fn}
}

// Liveness reports that the process is running. It never checks dependencies.
func Liveness(context.Context) error {
	return nil
}

// Option configures Readiness.
type Option func(*readiness)

type readiness struct {
	log     *slog.Logger
	timeout time.Duration
}

// WithLogger logs every failed check.
func WithLogger(log *slog.Logger) Option {
	return func(r *readiness) {
		if log != nil {
			r.log = log
		}
	}
}

// WithTimeout bounds each run of the checks.
func WithTimeout(d time.Duration) Option {
	return func(r *readiness) {
		r.timeout = d
	}
}

// Readiness returns a probe that runs all checks concurrently.
// It fails with ErrNotReady joined with every failing check's error.
// A panicking check counts as failed.
//
// Example:
//
//	ready := health.Readiness([]health.Check{
//		health.NewCheck("postgres", pg.Healthcheck(pool)),
//		health.NewCheck("redis", redis.Healthcheck(client)),
//	}, health.WithLogger(log), health.WithTimeout(2*time.Second))
func Readiness(checks []Check, opts ...Option) CheckFunc {
	r := &readiness{log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}

	return func(ctx context.Context) error {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		errs := make([]error, len(checks))
		var g errgroup.Group
		for i, c := range checks {
			g.Go(func() error {
				defer func() {
					if rec := recover(); rec != nil {
						errs[i] = fmt.Errorf("%s: %w: %v", c.Name, ErrCheckPanic, rec)
					}
				}()
				if err := c.Fn(ctx); err != nil {
					errs[i] = fmt.Errorf("%s: %w", c.Name, err)
				}
				return nil
			})
		}
		_ = g.Wait()

		failed := errors.Join(errs...)
		if failed == nil {
			return nil
		}

		r.log.ErrorContext(ctx, "readiness check failed",
			logger.Component("health"),
			logger.Error(failed))
		return errors.Join(ErrNotReady, failed)
	}
}
