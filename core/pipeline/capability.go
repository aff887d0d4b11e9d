package pipeline

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Cacheable opts a request into the Caching behavior.
type Cacheable interface {
	// CacheKey identifies the operation and its arguments.
	// An empty key disables caching for that request instance.
	CacheKey() string
	CachePolicy() CachePolicy
}

// CachePolicy controls the lifetime of a cached response.
type CachePolicy struct {
	// TTL is the entry lifetime. Zero falls back to the behavior's default TTL.
	TTL time.Duration
	// Tags group entries for invalidation.
	Tags []string
}

// Retryable opts a request into the Retry behavior.
type Retryable interface {
	RetryPolicy() RetryPolicy
}

// BackoffStrategy maps an attempt number to a wait duration.
type BackoffStrategy uint8

const (
	BackoffFixed BackoffStrategy = iota
	BackoffLinear
	BackoffExponential
)

var backoffNames = []string{"fixed", "linear", "exponential"}

func (s BackoffStrategy) String() string {
	if int(s) < len(backoffNames) {
		return backoffNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s BackoffStrategy) MarshalText() ([]byte, error) {
	if int(s) >= len(backoffNames) {
		return nil, fmt.Errorf("unknown backoff strategy %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so the strategy can be
// loaded from environment variables.
func (s *BackoffStrategy) UnmarshalText(text []byte) error {
	idx := slices.Index(backoffNames, strings.ToLower(strings.TrimSpace(string(text))))
	if idx < 0 {
		return fmt.Errorf("unknown backoff strategy %q", text)
	}
	*s = BackoffStrategy(idx)
	return nil
}

// RetryPolicy controls how a Retryable request is re-attempted.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first. Values below 1 mean 1.
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffStrategy

	// RetryOn and RetryOnErrors form an explicit allow-list. When both are
	// empty, timeouts, transient network failures and cancellations are retried.
	RetryOn       []Kind
	RetryOnErrors []error
}

var defaultRetryableKinds = []Kind{KindTimeout, KindTransientNetwork, KindCanceled}

// Attempts returns MaxAttempts clamped to at least one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given failed attempt (1-indexed):
// Fixed b, Linear b×n, Exponential b×2^(n−1). Results saturate instead of overflowing.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := p.BaseDelay
	if b <= 0 {
		return 0
	}

	switch p.Backoff {
	case BackoffLinear:
		if int64(b) > math.MaxInt64/int64(attempt) {
			return time.Duration(math.MaxInt64)
		}
		return b * time.Duration(attempt)
	case BackoffExponential:
		d := b
		for i := 1; i < attempt; i++ {
			if d > math.MaxInt64/2 {
				return time.Duration(math.MaxInt64)
			}
			d *= 2
		}
		return d
	default:
		return b
	}
}

// IsRetryable reports whether err may be retried under this policy.
func (p RetryPolicy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if len(p.RetryOn) == 0 && len(p.RetryOnErrors) == 0 {
		return slices.Contains(defaultRetryableKinds, Classify(err))
	}

	if len(p.RetryOn) > 0 && slices.Contains(p.RetryOn, Classify(err)) {
		return true
	}
	for _, target := range p.RetryOnErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
