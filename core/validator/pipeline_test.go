package validator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailhub/foundation/core/pipeline"
	"github.com/retailhub/foundation/core/validator"
)

type CreateSale struct {
	StoreID string   `validate:"required;uuid"`
	Items   []string `validate:"min:1"`
}

type Ping struct{}

func TestTags(t *testing.T) {
	t.Parallel()

	newDispatcher := func(calls *int) *pipeline.Dispatcher {
		d := pipeline.NewDispatcher(pipeline.WithBehaviors(pipeline.Validation(validator.Tags())))
		pipeline.Register(d, func(ctx context.Context, c CreateSale) (string, error) {
			*calls++
			return "ok", nil
		})
		pipeline.Register(d, func(ctx context.Context, c *Ping) (string, error) {
			*calls++
			return "pong", nil
		})
		return d
	}

	t.Run("rejects invalid value requests", func(t *testing.T) {
		t.Parallel()

		var calls int
		d := newDispatcher(&calls)

		_, err := pipeline.Send[string](context.Background(), d, CreateSale{StoreID: "nope"})
		require.ErrorIs(t, err, pipeline.ErrValidation)

		var verr *pipeline.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []pipeline.ValidationFailure{
			{Field: "StoreID", Message: "must be a valid UUID"},
			{Field: "Items", Message: "must have at least 1 items"},
		}, verr.Failures)
		assert.Zero(t, calls)
	})

	t.Run("passes valid requests", func(t *testing.T) {
		t.Parallel()

		var calls int
		d := newDispatcher(&calls)

		res, err := pipeline.Send[string](context.Background(), d, CreateSale{
			StoreID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			Items:   []string{"sku-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Equal(t, 1, calls)
	})

	t.Run("accepts pointer requests", func(t *testing.T) {
		t.Parallel()

		var calls int
		d := newDispatcher(&calls)

		res, err := pipeline.Send[string](context.Background(), d, &Ping{})
		require.NoError(t, err)
		assert.Equal(t, "pong", res)
	})

	t.Run("ignores non-struct requests", func(t *testing.T) {
		t.Parallel()

		failures, err := validator.Tags().Validate(context.Background(), "plain string")
		require.NoError(t, err)
		assert.Empty(t, failures)

		failures, err = validator.Tags().Validate(context.Background(), (*Ping)(nil))
		require.NoError(t, err)
		assert.Empty(t, failures)
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := validator.Tags().Validate(ctx, CreateSale{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFailures(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.Failures(nil))
	assert.Equal(t,
		[]pipeline.ValidationFailure{{Field: "A", Message: "bad"}},
		validator.Failures(validator.ValidationErrors{{Field: "A", Message: "bad", TranslationKey: "k"}}),
	)
}
