package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailhub/foundation/core/logger"
)

// Logging returns a behavior that logs the start and the outcome of every request.
// Failures are logged and returned unchanged.
//
// Example:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Logging(log)))
func Logging(log *slog.Logger) Behavior {
	if log == nil {
		log = slog.Default()
	}

	return BehaviorFunc(func(ctx context.Context, call *Call, next Next) (any, error) {
		start := time.Now()

		log.InfoContext(ctx, "request started",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Timestamp(start))

		res, err := next(ctx)
		duration := time.Since(start)

		if err != nil {
			log.ErrorContext(ctx, "request failed",
				logger.Request(call.Name),
				logger.CallID(call.ID),
				logger.Timestamp(time.Now()),
				logger.Duration(duration),
				logger.ErrorKind(Classify(err).String()),
				logger.Error(err))
			return res, err
		}

		log.InfoContext(ctx, "request completed",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Timestamp(time.Now()),
			logger.Duration(duration))

		return res, nil
	})
}
