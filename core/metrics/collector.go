package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/retailhub/foundation/core/pipeline"
)

// Collector records pipeline metrics in Prometheus. It satisfies the
// observer interfaces of the Performance, Caching and Retry behaviors.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
}

var (
	_ pipeline.DurationObserver = (*Collector)(nil)
	_ pipeline.CacheObserver    = (*Collector)(nil)
	_ pipeline.RetryObserver    = (*Collector)(nil)
)

// NewCollector registers the pipeline metrics under namespace with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "requests_total",
				Help:      "Total number of dispatched requests",
			},
			[]string{"request", "status", "error_kind"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"request"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "cache_lookups_total",
				Help:      "Total number of response cache lookups",
			},
			[]string{"request", "result"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "retries_total",
				Help:      "Total number of request re-attempts",
			},
			[]string{"request", "error_kind"},
		),
	}
}

// ObserveDuration implements pipeline.DurationObserver.
func (c *Collector) ObserveDuration(request string, d time.Duration, err error) {
	status, kind := "success", ""
	if err != nil {
		status, kind = "error", pipeline.Classify(err).String()
	}
	c.requestsTotal.WithLabelValues(request, status, kind).Inc()
	c.requestDuration.WithLabelValues(request).Observe(d.Seconds())
}

// ObserveCache implements pipeline.CacheObserver.
func (c *Collector) ObserveCache(request string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(request, result).Inc()
}

// ObserveRetry implements pipeline.RetryObserver.
func (c *Collector) ObserveRetry(request string, attempt int, err error) {
	c.retriesTotal.WithLabelValues(request, pipeline.Classify(err).String()).Inc()
}
