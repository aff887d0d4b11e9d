// Package metrics exports pipeline activity to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewCollector("retail", reg)
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Performance(log, pipeline.WithDurationObserver(m)),
//		pipeline.Caching(store, pipeline.WithCacheObserver(m)),
//		pipeline.Retry(pipeline.WithRetryObserver(m)),
//	))
//
// Exposed series, all labelled by request name:
//
//	<ns>_pipeline_requests_total{status, error_kind}
//	<ns>_pipeline_request_duration_seconds
//	<ns>_pipeline_cache_lookups_total{result}
//	<ns>_pipeline_retries_total{error_kind}
package metrics
