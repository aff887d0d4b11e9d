package health_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailhub/foundation/core/health"
	"github.com/retailhub/foundation/core/logger"
	"github.com/retailhub/foundation/integration/database/redis"
)

func TestLiveness(t *testing.T) {
	t.Parallel()
	assert.NoError(t, health.Liveness(context.Background()))
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		ready := health.Readiness([]health.Check{
			health.NewCheck("redis", redis.Healthcheck(client)),
			health.NewCheck("noop", health.Liveness),
		})
		assert.NoError(t, ready(context.Background()))
	})

	t.Run("reports every failing check", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		dbDown := errors.New("db down")
		cacheDown := errors.New("cache down")
		ready := health.Readiness([]health.Check{
			health.NewCheck("postgres", func(context.Context) error { return dbDown }),
			health.NewCheck("redis", func(context.Context) error { return cacheDown }),
			health.NewCheck("mongo", func(context.Context) error { return nil }),
		}, health.WithLogger(log))

		err := ready(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, health.ErrNotReady)
		assert.ErrorIs(t, err, dbDown)
		assert.ErrorIs(t, err, cacheDown)
		assert.Contains(t, err.Error(), "postgres: db down")
		assert.NotContains(t, err.Error(), "mongo")
		assert.Contains(t, buf.String(), "readiness check failed")
	})

	t.Run("timeout bounds slow checks", func(t *testing.T) {
		t.Parallel()

		ready := health.Readiness([]health.Check{
			health.NewCheck("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		}, health.WithTimeout(10*time.Millisecond))

		err := ready(context.Background())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
	t.Run("panicking check fails readiness", func(t *testing.T) {
		t.Parallel()

		ready := health.Readiness([]health.Check{
			health.NewCheck("ok", func(context.Context) error { return nil }),
			health.NewCheck("search", func(context.Context) error {
				panic("nil client")
			}),
		})

		err := ready(context.Background())
		require.ErrorIs(t, err, health.ErrNotReady)
		assert.ErrorIs(t, err, health.ErrCheckPanic)
		assert.Contains(t, err.Error(), "search: check panicked: nil client")
	})
}
