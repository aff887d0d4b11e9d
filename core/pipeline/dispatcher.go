package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/retailhub/foundation/core/logger"
)

// Dispatcher routes requests to their handlers through a composed chain of behaviors.
//
// Example:
//
//	d := pipeline.NewDispatcher(
//	    pipeline.WithBehaviors(
//	        pipeline.Logging(log),
//	        pipeline.Performance(log),
//	        pipeline.Validation(validators...),
//	        pipeline.Caching(store),
//	        pipeline.Transaction(uowFactory),
//	        pipeline.Retry(),
//	    ),
//	)
//	pipeline.Register(d, getProduct)
//	product, err := pipeline.Send[Product](ctx, d, GetProduct{ID: "sku-1"})
type Dispatcher struct {
	routes    map[reflect.Type]*route
	behaviors []Behavior
	logger    *slog.Logger
	mu        sync.RWMutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// NewDispatcher creates a new request dispatcher with the given options.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		routes: make(map[reflect.Type]*route),
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithBehaviors sets the default behaviors applied to every request type
// registered afterwards. The first behavior is the outermost.
// Behaviors must be configured at construction time; routes compose them once.
func WithBehaviors(behaviors ...Behavior) Option {
	return func(d *Dispatcher) {
		d.behaviors = behaviors
	}
}

// WithLogger sets the logger for the dispatcher.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

func (d *Dispatcher) register(r *route) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.routes[r.requestType]; exists {
		panic(fmt.Sprintf("%s: %s", ErrHandlerAlreadyRegistered, r.name))
	}
	d.routes[r.requestType] = r

	d.logger.Debug("handler registered",
		logger.Request(r.name),
		logger.Count("behaviors", r.behaviors),
	)
}

func (d *Dispatcher) lookup(req any) (*route, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	t := reflect.TypeOf(req)

	d.mu.RLock()
	r, ok := d.routes[t]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, requestName(t))
	}
	return r, nil
}

// Has reports whether a handler is registered for the request's type.
func (d *Dispatcher) Has(req any) bool {
	_, err := d.lookup(req)
	return err == nil
}

// Dispatch runs req through its pipeline and returns the untyped response.
// Prefer Send for typed access.
func (d *Dispatcher) Dispatch(ctx context.Context, req any) (any, error) {
	r, err := d.lookup(req)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, r, req)
}

func (d *Dispatcher) run(ctx context.Context, r *route, req any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	call := newCall(r.name, req, r.responseType)
	ctx = WithCallMeta(ctx, call)

	return r.run(ctx, call)
}

// Send dispatches req and returns the handler's response as Res.
// ErrResponseType is returned, before any behavior runs, when Res differs
// from the registered handler's response type.
//
// Example:
//
//	sale, err := pipeline.Send[Sale](ctx, d, CreateSale{StoreID: "s-1"})
func Send[Res any](ctx context.Context, d *Dispatcher, req any) (Res, error) {
	var zero Res

	r, err := d.lookup(req)
	if err != nil {
		return zero, err
	}

	want := reflect.TypeFor[Res]()
	if r.responseType != want {
		return zero, fmt.Errorf("%w: %s returns %s, not %s", ErrResponseType, r.name, r.responseType, want)
	}

	out, err := d.run(ctx, r, req)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}

	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("%w: %s produced %T", ErrResponseType, r.name, out)
	}
	return res, nil
}
