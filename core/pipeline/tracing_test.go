package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/retailhub/foundation/core/pipeline"
)

func newTracer(t *testing.T) (*tracetest.SpanRecorder, trace.Tracer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return recorder, provider.Tracer("pipeline-test")
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	t.Parallel()

	t.Run("records a span per request", func(t *testing.T) {
		t.Parallel()

		recorder, tracer := newTracer(t)
		var handlerSpan trace.SpanContext

		d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Tracing(tracer)))
		pipeline.Register(d, func(ctx context.Context, c CreateSale) (Sale, error) {
			handlerSpan = trace.SpanContextFromContext(ctx)
			return Sale{ID: "sale-1"}, nil
		})

		_, err := pipeline.Send[Sale](context.Background(), d, CreateSale{})
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "pipeline.CreateSale", spans[0].Name())
		assert.Equal(t, spans[0].SpanContext().SpanID(), handlerSpan.SpanID())

		name, ok := spanAttr(spans[0], "pipeline.request")
		require.True(t, ok)
		assert.Equal(t, "CreateSale", name.AsString())

		callID, ok := spanAttr(spans[0], "pipeline.call_id")
		require.True(t, ok)
		assert.NotEmpty(t, callID.AsString())
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("marks failed requests", func(t *testing.T) {
		t.Parallel()

		recorder, tracer := newTracer(t)
		d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Tracing(tracer)))
		pipeline.Register(d, func(ctx context.Context, c CreateSale) (Sale, error) {
			return Sale{}, pipeline.Transient(errors.New("terminal offline"))
		})

		_, err := pipeline.Send[Sale](context.Background(), d, CreateSale{})
		require.Error(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "terminal offline", spans[0].Status().Description)

		kind, ok := spanAttr(spans[0], "pipeline.error_kind")
		require.True(t, ok)
		assert.Equal(t, "transient_network", kind.AsString())
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})
}
