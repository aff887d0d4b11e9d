package pipeline

import "time"

// Config holds the environment-driven defaults for the pipeline behaviors.
// Load it with config.Load.
type Config struct {
	SlowThreshold    time.Duration   `env:"PIPELINE_SLOW_THRESHOLD" envDefault:"500ms"`
	RetryMaxAttempts int             `env:"PIPELINE_RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay   time.Duration   `env:"PIPELINE_RETRY_BASE_DELAY" envDefault:"100ms"`
	RetryBackoff     BackoffStrategy `env:"PIPELINE_RETRY_BACKOFF" envDefault:"exponential"`
	CacheTTL         time.Duration   `env:"PIPELINE_CACHE_TTL" envDefault:"5m"`
	CacheCoalesce    bool            `env:"PIPELINE_CACHE_COALESCE" envDefault:"false"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		SlowThreshold:    DefaultSlowThreshold,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   100 * time.Millisecond,
		RetryBackoff:     BackoffExponential,
		CacheTTL:         5 * time.Minute,
	}
}

// RetryPolicy builds the default retry policy for Retryable requests.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.RetryMaxAttempts,
		BaseDelay:   c.RetryBaseDelay,
		Backoff:     c.RetryBackoff,
	}
}

// CachePolicy builds a cache policy with the configured TTL.
func (c Config) CachePolicy(tags ...string) CachePolicy {
	return CachePolicy{TTL: c.CacheTTL, Tags: tags}
}

// CachingOptions translates the config into Caching options.
func (c Config) CachingOptions() []CachingOption {
	opts := []CachingOption{WithDefaultTTL(c.CacheTTL)}
	if c.CacheCoalesce {
		opts = append(opts, WithCoalescing())
	}
	return opts
}

// PerformanceOptions translates the config into Performance options.
func (c Config) PerformanceOptions() []PerformanceOption {
	return []PerformanceOption{WithSlowThreshold(c.SlowThreshold)}
}
