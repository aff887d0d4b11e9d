package pipeline

import (
	"context"
)

// Next invokes everything downstream of the current behavior.
// The context passed in becomes the context of the next stage, which lets a
// behavior attach values (a unit of work, a span) for the stages below it.
type Next func(ctx context.Context) (any, error)

// Behavior is one cross-cutting concern wrapped around a request handler.
// A behavior either calls next exactly once on its success path, or
// short-circuits without calling it at all.
type Behavior interface {
	Handle(ctx context.Context, call *Call, next Next) (any, error)
}

// BehaviorFunc adapts an ordinary function to the Behavior interface.
type BehaviorFunc func(ctx context.Context, call *Call, next Next) (any, error)

// Handle calls f.
func (f BehaviorFunc) Handle(ctx context.Context, call *Call, next Next) (any, error) {
	return f(ctx, call, next)
}

// stage is a composed pipeline: behaviors folded around a terminal handler.
type stage func(ctx context.Context, call *Call) (any, error)

// chain applies behaviors in order.
// The first behavior in the slice is the outermost (executed first).
func chain(behaviors []Behavior, terminal stage) stage {
	h := terminal
	// Reverse order required: wrapping innermost first makes it execute last
	for i := len(behaviors) - 1; i >= 0; i-- {
		h = wrap(behaviors[i], h)
	}
	return h
}

func wrap(b Behavior, inner stage) stage {
	return func(ctx context.Context, call *Call) (any, error) {
		return b.Handle(ctx, call, func(ctx context.Context) (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return inner(ctx, call)
		})
	}
}
