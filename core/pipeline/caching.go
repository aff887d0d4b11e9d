package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/retailhub/foundation/core/logger"
)

// CacheStore holds serialized responses. It is owned by the caller and must
// be safe for concurrent use.
type CacheStore interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, policy CachePolicy) error
}

// CacheInvalidator is implemented by stores that support tag invalidation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// CacheObserver receives cache hit and miss notifications.
type CacheObserver interface {
	ObserveCache(request string, hit bool)
}

type cachingBehavior struct {
	store      CacheStore
	logger     *slog.Logger
	defaultTTL time.Duration
	observer   CacheObserver
	group      *singleflight.Group
}

// CachingOption configures the Caching behavior.
type CachingOption func(*cachingBehavior)

// WithCacheLogger sets the logger used for store failures.
func WithCacheLogger(log *slog.Logger) CachingOption {
	return func(b *cachingBehavior) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithDefaultTTL is used when a request's CachePolicy has no TTL.
func WithDefaultTTL(ttl time.Duration) CachingOption {
	return func(b *cachingBehavior) {
		b.defaultTTL = ttl
	}
}

// WithCacheObserver reports hits and misses, e.g. to a metrics collector.
func WithCacheObserver(o CacheObserver) CachingOption {
	return func(b *cachingBehavior) {
		b.observer = o
	}
}

// WithCoalescing collapses concurrent misses for the same key into a single
// downstream call. Every waiting caller receives the leader's result, decoded
// into its own copy when the response is serializable. The leader's context
// governs the shared call.
func WithCoalescing() CachingOption {
	return func(b *cachingBehavior) {
		b.group = &singleflight.Group{}
	}
}

// Caching serves Cacheable requests from store and populates it on miss.
// Failures are never cached. Store errors are logged and treated as a miss,
// they never fail the request.
func Caching(store CacheStore, opts ...CachingOption) Behavior {
	b := &cachingBehavior{
		store:  store,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *cachingBehavior) Handle(ctx context.Context, call *Call, next Next) (any, error) {
	c, ok := call.Request.(Cacheable)
	if !ok {
		return next(ctx)
	}
	key := c.CacheKey()
	if key == "" {
		return next(ctx)
	}

	if res, hit := b.lookup(ctx, call, key); hit {
		b.observe(call.Name, true)
		return res, nil
	}
	b.observe(call.Name, false)

	policy := c.CachePolicy()
	if policy.TTL <= 0 {
		policy.TTL = b.defaultTTL
	}

	if b.group == nil {
		res, _, err := b.load(ctx, call, key, policy, next)
		return res, err
	}

	v, err, shared := b.group.Do(call.Name+"\x00"+key, func() (any, error) {
		res, data, err := b.load(ctx, call, key, policy, next)
		return loaded{res: res, data: data}, err
	})
	l, _ := v.(loaded)
	if err != nil || !shared || l.data == nil {
		return l.res, err
	}
	if res, ok := b.decode(ctx, call, key, l.data); ok {
		return res, nil
	}
	return l.res, nil
}

// loaded is the result of one coalesced downstream call.
type loaded struct {
	res  any
	data []byte
}

func (b *cachingBehavior) lookup(ctx context.Context, call *Call, key string) (any, bool) {
	data, ok, err := b.store.Get(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "cache lookup failed",
			logger.Request(call.Name),
			logger.CacheKey(key),
			logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return b.decode(ctx, call, key, data)
}

func (b *cachingBehavior) decode(ctx context.Context, call *Call, key string, data []byte) (any, bool) {
	target := call.NewResponse()
	if err := json.Unmarshal(data, target); err != nil {
		b.logger.WarnContext(ctx, "cached response is unreadable",
			logger.Request(call.Name),
			logger.CacheKey(key),
			logger.Error(err))
		return nil, false
	}

	return reflect.ValueOf(target).Elem().Interface(), true
}

// load runs the rest of the pipeline and stores its response. It returns the
// serialized response, nil when the response is not cacheable.
func (b *cachingBehavior) load(ctx context.Context, call *Call, key string, policy CachePolicy, next Next) (any, []byte, error) {
	res, err := next(ctx)
	if err != nil {
		return res, nil, err
	}
	if isNil(res) {
		return res, nil, nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		b.logger.WarnContext(ctx, "response is not cacheable",
			logger.Request(call.Name),
			logger.CacheKey(key),
			logger.Error(err))
		return res, nil, nil
	}

	if err := b.store.Set(ctx, key, data, policy); err != nil {
		b.logger.WarnContext(ctx, "cache store failed",
			logger.Request(call.Name),
			logger.CacheKey(key),
			logger.Error(err))
	}

	return res, data, nil
}

func (b *cachingBehavior) observe(name string, hit bool) {
	if b.observer != nil {
		b.observer.ObserveCache(name, hit)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
