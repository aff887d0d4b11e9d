package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/retailhub/foundation/core/pipeline"

// Tracing starts a span around the rest of the pipeline. A nil tracer uses
// the global OpenTelemetry provider.
func Tracing(tracer trace.Tracer) Behavior {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return BehaviorFunc(func(ctx context.Context, call *Call, next Next) (any, error) {
		ctx, span := tracer.Start(ctx, "pipeline."+call.Name,
			trace.WithAttributes(
				attribute.String("pipeline.request", call.Name),
				attribute.String("pipeline.call_id", call.ID),
			))
		defer span.End()

		res, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("pipeline.error_kind", Classify(err).String()))
		}
		return res, err
	})
}
