package pipeline_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/retailhub/foundation/core/pipeline"
)

func TestRetryPolicyDelay(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond

	tests := []struct {
		name    string
		backoff pipeline.BackoffStrategy
		want    []time.Duration
	}{
		{"fixed", pipeline.BackoffFixed, []time.Duration{base, base, base}},
		{"linear", pipeline.BackoffLinear, []time.Duration{base, 2 * base, 3 * base}},
		{"exponential", pipeline.BackoffExponential, []time.Duration{base, 2 * base, 4 * base}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := pipeline.RetryPolicy{BaseDelay: base, Backoff: tt.backoff}
			for i, want := range tt.want {
				assert.Equal(t, want, p.Delay(i+1), "attempt %d", i+1)
			}
		})
	}

	t.Run("saturates instead of overflowing", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{BaseDelay: time.Hour, Backoff: pipeline.BackoffExponential}
		assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(100))
	})

	t.Run("zero base delay never waits", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{Backoff: pipeline.BackoffExponential}
		assert.Zero(t, p.Delay(5))
	})
}

func TestRetryPolicyDelayProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		base := time.Duration(rapid.Int64Range(1, int64(time.Minute)).Draw(t, "base"))
		attempt := rapid.IntRange(1, 80).Draw(t, "attempt")
		backoff := pipeline.BackoffStrategy(rapid.IntRange(0, 2).Draw(t, "backoff"))

		p := pipeline.RetryPolicy{BaseDelay: base, Backoff: backoff}
		d := p.Delay(attempt)

		if d < base {
			t.Fatalf("delay %s below base %s", d, base)
		}
		if next := p.Delay(attempt + 1); next < d {
			t.Fatalf("delay decreased from %s to %s", d, next)
		}
		if backoff == pipeline.BackoffFixed && d != base {
			t.Fatalf("fixed delay %s differs from base %s", d, base)
		}
	})
}

func TestRetryPolicyAttempts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, pipeline.RetryPolicy{}.Attempts())
	assert.Equal(t, 1, pipeline.RetryPolicy{MaxAttempts: -3}.Attempts())
	assert.Equal(t, 5, pipeline.RetryPolicy{MaxAttempts: 5}.Attempts())
}

func TestRetryPolicyIsRetryable(t *testing.T) {
	t.Parallel()

	errLocked := errors.New("row locked")

	tests := []struct {
		name   string
		policy pipeline.RetryPolicy
		err    error
		want   bool
	}{
		{"nil error", pipeline.RetryPolicy{}, nil, false},
		{"default timeout", pipeline.RetryPolicy{}, context.DeadlineExceeded, true},
		{"default transient", pipeline.RetryPolicy{}, pipeline.Transient(errors.New("x")), true},
		{"default canceled", pipeline.RetryPolicy{}, context.Canceled, true},
		{"default persistent", pipeline.RetryPolicy{}, errors.New("bad input"), false},
		{"default validation", pipeline.RetryPolicy{}, &pipeline.ValidationError{}, false},
		{"kind allow-list hit", pipeline.RetryPolicy{RetryOn: []pipeline.Kind{pipeline.KindPersistent}}, errors.New("x"), true},
		{"kind allow-list miss", pipeline.RetryPolicy{RetryOn: []pipeline.Kind{pipeline.KindTimeout}}, context.Canceled, false},
		{"error allow-list hit", pipeline.RetryPolicy{RetryOnErrors: []error{errLocked}}, errLocked, true},
		{"error allow-list wrapped", pipeline.RetryPolicy{RetryOnErrors: []error{errLocked}}, pipeline.Persistent(errLocked), true},
		{"error allow-list miss", pipeline.RetryPolicy{RetryOnErrors: []error{errLocked}}, context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.policy.IsRetryable(tt.err))
		})
	}
}

func TestBackoffStrategyText(t *testing.T) {
	t.Parallel()

	t.Run("round trips every strategy", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			s := pipeline.BackoffStrategy(rapid.IntRange(0, 2).Draw(t, "strategy"))
			upper := rapid.Bool().Draw(t, "upper")

			text, err := s.MarshalText()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if upper {
				text = []byte(strings.ToUpper(string(text)))
			}

			var got pipeline.BackoffStrategy
			if err := got.UnmarshalText(text); err != nil {
				t.Fatalf("unmarshal %q: %v", text, err)
			}
			if got != s {
				t.Fatalf("got %s, want %s", got, s)
			}
		})
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		var s pipeline.BackoffStrategy
		require.Error(t, s.UnmarshalText([]byte("fibonacci")))
		_, err := pipeline.BackoffStrategy(9).MarshalText()
		require.Error(t, err)
		assert.Equal(t, "unknown", pipeline.BackoffStrategy(9).String())
	})
}
