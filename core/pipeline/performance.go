package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailhub/foundation/core/logger"
)

// DefaultSlowThreshold is the duration above which Performance logs a warning.
const DefaultSlowThreshold = 500 * time.Millisecond

// DurationObserver receives the wall-clock duration of every request.
type DurationObserver interface {
	ObserveDuration(request string, d time.Duration, err error)
}

type performanceBehavior struct {
	logger    *slog.Logger
	threshold time.Duration
	observer  DurationObserver
	now       func() time.Time
}

// PerformanceOption configures the Performance behavior.
type PerformanceOption func(*performanceBehavior)

// WithSlowThreshold overrides DefaultSlowThreshold. Non-positive values are ignored.
func WithSlowThreshold(d time.Duration) PerformanceOption {
	return func(b *performanceBehavior) {
		if d > 0 {
			b.threshold = d
		}
	}
}

// WithDurationObserver forwards every measured duration, e.g. to a histogram.
func WithDurationObserver(o DurationObserver) PerformanceOption {
	return func(b *performanceBehavior) {
		b.observer = o
	}
}

// Performance measures how long the rest of the pipeline takes. Requests
// slower than the threshold are logged at warn level, others at info.
// The response and error pass through untouched.
func Performance(log *slog.Logger, opts ...PerformanceOption) Behavior {
	if log == nil {
		log = slog.Default()
	}
	b := &performanceBehavior{
		logger:    log,
		threshold: DefaultSlowThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *performanceBehavior) Handle(ctx context.Context, call *Call, next Next) (any, error) {
	start := b.now()
	res, err := next(ctx)
	elapsed := b.now().Sub(start)

	if b.observer != nil {
		b.observer.ObserveDuration(call.Name, elapsed, err)
	}

	if elapsed > b.threshold {
		b.logger.WarnContext(ctx, "slow request",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Duration(elapsed),
			logger.Threshold(b.threshold))
	} else {
		b.logger.InfoContext(ctx, "request timing",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Duration(elapsed))
	}

	return res, err
}
