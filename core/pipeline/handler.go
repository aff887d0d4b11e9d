package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// HandlerFunc is the terminal handler of a request type.
type HandlerFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// route is a registered request type with its composed pipeline.
type route struct {
	name         string
	requestType  reflect.Type
	responseType reflect.Type
	behaviors    int
	run          stage
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

type registration struct {
	name      string
	behaviors []Behavior
}

// WithPipeline replaces the dispatcher-wide behaviors for this request type.
// Behaviors run in the order given, first is outermost.
//
// Example:
//
//	pipeline.Register(d, createSale,
//	    pipeline.WithPipeline(
//	        pipeline.Logging(log),
//	        pipeline.Validation(saleValidators...),
//	        pipeline.Transaction(uowFactory),
//	    ),
//	)
func WithPipeline(behaviors ...Behavior) RegisterOption {
	return func(r *registration) {
		r.behaviors = behaviors
	}
}

// WithName overrides the request name used for logs, metrics and cache coalescing.
func WithName(name string) RegisterOption {
	return func(r *registration) {
		if name != "" {
			r.name = name
		}
	}
}

// Register registers the terminal handler for request type Req and composes
// its pipeline once. Panics if Req already has a handler.
//
// Example:
//
//	pipeline.Register(d, func(ctx context.Context, q GetProduct) (Product, error) {
//	    return repo.Product(ctx, q.ID)
//	})
func Register[Req, Res any](d *Dispatcher, fn HandlerFunc[Req, Res], opts ...RegisterOption) {
	reqType := reflect.TypeFor[Req]()
	resType := reflect.TypeFor[Res]()

	reg := &registration{
		name:      requestName(reqType),
		behaviors: d.behaviors,
	}
	for _, opt := range opts {
		opt(reg)
	}

	name := reg.name
	terminal := func(ctx context.Context, call *Call) (any, error) {
		req, ok := call.Request.(Req)
		if !ok {
			return nil, fmt.Errorf("%w: expected %s, got %T", ErrRequestType, name, call.Request)
		}
		return safeHandle(name, func() (any, error) {
			return fn(ctx, req)
		})
	}

	d.register(&route{
		name:         name,
		requestType:  reqType,
		responseType: resType,
		behaviors:    len(reg.behaviors),
		run:          chain(reg.behaviors, terminal),
	})
}

// requestNameCache caches reflection results for request name lookups.
var requestNameCache sync.Map

// requestName derives the request name from a reflect.Type.
// For structs, it returns the struct name.
// For pointers to structs, it returns the struct name.
func requestName(t reflect.Type) string {
	if name, ok := requestNameCache.Load(t); ok {
		return name.(string)
	}

	original := t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var name string
	if t.Name() != "" {
		name = t.Name()
	} else {
		name = t.String()
	}

	requestNameCache.Store(original, name)
	return name
}

// NameOf returns the request name for a request instance.
func NameOf(req any) string {
	if req == nil {
		return ""
	}
	return requestName(reflect.TypeOf(req))
}

// safeHandle executes a handler with panic recovery.
// If the handler panics, the panic is caught and converted to an error.
func safeHandle(name string, fn func() (any, error)) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, name, r)
		}
	}()
	return fn()
}
