// Package health aggregates dependency probes into liveness and readiness checks.
//
// Probes follow the func(context.Context) error signature returned by the
// Healthcheck helpers of the database integrations:
//
//	ready := health.Readiness([]health.Check{
//		health.NewCheck("postgres", pg.Healthcheck(pool)),
//		health.NewCheck("redis", redis.Healthcheck(client)),
//	}, health.WithTimeout(2*time.Second))
//
//	if err := ready(ctx); err != nil {
//		// errors.Is(err, health.ErrNotReady)
//	}
//
// Checks run concurrently, so one slow dependency does not delay the others.
package health
