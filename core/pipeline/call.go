package pipeline

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/retailhub/foundation/core/logger"
)

// Call describes one dispatch of a request through its pipeline.
type Call struct {
	ID        string
	Name      string
	Request   any
	CreatedAt time.Time

	responseType reflect.Type
}

func newCall(name string, req any, responseType reflect.Type) *Call {
	return &Call{
		ID:           uuid.New().String(),
		Name:         name,
		Request:      req,
		CreatedAt:    time.Now(),
		responseType: responseType,
	}
}

// ResponseType returns the response type produced by the request's handler.
func (c *Call) ResponseType() reflect.Type {
	return c.responseType
}

// NewResponse returns a pointer to a fresh zero response value,
// suitable as a decoding target.
func (c *Call) NewResponse() any {
	if c.responseType == nil {
		var v any
		return &v
	}
	return reflect.New(c.responseType).Interface()
}

type callIDCtx struct{}

// WithCallID attaches a call ID to the context for tracing and correlation.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDCtx{}, id)
}

// CallID extracts the call ID from the context.
// Returns empty string if not present.
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(callIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type requestNameCtx struct{}

// WithRequestName attaches a request name to the context for logging and metrics.
func WithRequestName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, requestNameCtx{}, name)
}

// RequestName extracts the request name from the context.
// Returns empty string if not present.
func RequestName(ctx context.Context) string {
	if name, ok := ctx.Value(requestNameCtx{}).(string); ok {
		return name
	}
	return ""
}

// WithCallMeta attaches the call ID and request name to the context.
func WithCallMeta(ctx context.Context, call *Call) context.Context {
	ctx = WithCallID(ctx, call.ID)
	ctx = WithRequestName(ctx, call.Name)
	return ctx
}

// CallIDExtractor is a logger.ContextExtractor for the call ID.
func CallIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := CallID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.CallID(id), true
}

// RequestNameExtractor is a logger.ContextExtractor for the request name.
func RequestNameExtractor(ctx context.Context) (slog.Attr, bool) {
	name := RequestName(ctx)
	if name == "" {
		return slog.Attr{}, false
	}
	return logger.Request(name), true
}
