// Package redis provides Redis client initialization, health checking and a
// shared cache store for the pipeline Caching behavior.
//
// Connect parses a redis:// or rediss:// URL, pings the server and retries
// failed pings with exponential backoff until RetryAttempts is exhausted or
// ConnectTimeout expires:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// # Cache Store
//
// CacheStore implements pipeline.CacheStore and pipeline.CacheInvalidator so
// cached responses are shared between processes:
//
//	store := redis.NewCacheStore(client, cfg.KeyPrefix)
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Caching(store)))
//
// Values are stored under prefix+key with the policy TTL. Each tag is a Redis
// set holding the full keys written with it, so Invalidate removes every key
// of a tag and then the tag set itself. Tag sets carry no TTL; members that
// expired before invalidation are deleted as no-ops.
//
// # Health Checking
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// errors.Is(err, redis.ErrHealthcheckFailed)
//	}
//
// # Error Handling
//
//   - ErrFailedToParseRedisConnString: the connection URL is malformed
//   - ErrRedisNotReady: Redis did not answer PING within the retry budget
//   - ErrEmptyConnectionURL: no connection URL was provided
//   - ErrHealthcheckFailed: the health check ping failed
package redis
