package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailhub/foundation/core/pipeline"
	"github.com/retailhub/foundation/integration/database/redis"
)

func newStore(t *testing.T) (*miniredis.Miniredis, *redis.CacheStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, redis.NewCacheStore(client, "test:")
}

func TestCacheStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		require.NoError(t, store.Set(ctx, "product:1", []byte(`{"sku":"1"}`), pipeline.CachePolicy{TTL: time.Minute}))

		data, ok, err := store.Get(ctx, "product:1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"sku":"1"}`, string(data))

		assert.True(t, mr.Exists("test:product:1"))
		assert.Equal(t, time.Minute, mr.TTL("test:product:1"))
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		data, ok, err := store.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, data)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), pipeline.CachePolicy{TTL: time.Second}))

		mr.FastForward(2 * time.Second)
		_, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate by tag", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		require.NoError(t, store.Set(ctx, "p1", []byte("1"), pipeline.CachePolicy{Tags: []string{"products"}}))
		require.NoError(t, store.Set(ctx, "p2", []byte("2"), pipeline.CachePolicy{Tags: []string{"products", "store:7"}}))
		require.NoError(t, store.Set(ctx, "s1", []byte("3"), pipeline.CachePolicy{Tags: []string{"store:7"}}))

		members, err := mr.SMembers("test:tag:products")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"test:p1", "test:p2"}, members)

		require.NoError(t, store.Invalidate(ctx, "products"))

		_, ok, _ := store.Get(ctx, "p1")
		assert.False(t, ok)
		_, ok, _ = store.Get(ctx, "p2")
		assert.False(t, ok)
		_, ok, _ = store.Get(ctx, "s1")
		assert.True(t, ok)
		assert.False(t, mr.Exists("test:tag:products"))

		require.NoError(t, store.Invalidate(ctx, "unknown"))
	})

	t.Run("tag sets expire with their longest-lived entry", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		tagged := func(key string, ttl time.Duration) {
			require.NoError(t, store.Set(ctx, key, []byte("v"), pipeline.CachePolicy{TTL: ttl, Tags: []string{"products"}}))
		}

		tagged("p1", time.Minute)
		assert.Equal(t, time.Minute, mr.TTL("test:tag:products"))

		tagged("p2", time.Hour)
		assert.Equal(t, time.Hour, mr.TTL("test:tag:products"))

		tagged("p3", 30*time.Second)
		assert.Equal(t, time.Hour, mr.TTL("test:tag:products"))

		mr.FastForward(2 * time.Hour)
		assert.False(t, mr.Exists("test:tag:products"))
	})

	t.Run("tag set of a permanent entry never expires", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		require.NoError(t, store.Set(ctx, "p1", []byte("1"), pipeline.CachePolicy{TTL: time.Minute, Tags: []string{"products"}}))
		require.NoError(t, store.Set(ctx, "p2", []byte("2"), pipeline.CachePolicy{Tags: []string{"products"}}))
		require.NoError(t, store.Set(ctx, "p3", []byte("3"), pipeline.CachePolicy{TTL: time.Second, Tags: []string{"products"}}))

		assert.Zero(t, mr.TTL("test:tag:products"))
		mr.FastForward(time.Hour)
		members, err := mr.SMembers("test:tag:products")
		require.NoError(t, err)
		assert.Contains(t, members, "test:p2")
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), pipeline.CachePolicy{}))
		require.NoError(t, store.Delete(ctx, "k"))
		_, ok, _ := store.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("reports connection failures", func(t *testing.T) {
		t.Parallel()

		mr, store := newStore(t)
		mr.Close()

		_, _, err := store.Get(ctx, "k")
		assert.Error(t, err)
		assert.Error(t, store.Set(ctx, "k", []byte("v"), pipeline.CachePolicy{}))
	})

	t.Run("default prefix", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		store := redis.NewCacheStore(client, "")
		require.NoError(t, store.Set(ctx, "k", []byte("v"), pipeline.CachePolicy{}))
		assert.True(t, mr.Exists("cache:k"))
	})
}

type GetStock struct {
	SKU string
}

func (q GetStock) CacheKey() string { return "stock:" + q.SKU }

func (q GetStock) CachePolicy() pipeline.CachePolicy {
	return pipeline.CachePolicy{TTL: time.Minute, Tags: []string{"stock"}}
}

type Stock struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func TestCacheStoreBacksCachingBehavior(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	calls := 0

	d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Caching(store)))
	pipeline.Register(d, func(ctx context.Context, q GetStock) (Stock, error) {
		calls++
		return Stock{SKU: q.SKU, Quantity: 10 * calls}, nil
	})

	ctx := context.Background()
	first, err := pipeline.Send[Stock](ctx, d, GetStock{SKU: "a"})
	require.NoError(t, err)
	second, err := pipeline.Send[Stock](ctx, d, GetStock{SKU: "a"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, store.Invalidate(ctx, "stock"))
	third, err := pipeline.Send[Stock](ctx, d, GetStock{SKU: "a"})
	require.NoError(t, err)
	assert.Equal(t, 20, third.Quantity)
}
