package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailhub/foundation/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("writes json records with static attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "sales")),
		)

		log.Info("test message", logger.Component("test"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "test message", record["msg"])
		assert.Equal(t, "sales", record["service"])
		assert.Equal(t, "test", record["component"])
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithLevel(slog.LevelWarn),
			logger.WithOutput(&buf),
		)

		log.Info("hidden")
		assert.Empty(t, buf.String())

		log.Warn("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("development preset enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithDevelopment("inventory"),
			logger.WithOutput(&buf),
		)

		log.Debug("debugging")
		assert.Contains(t, buf.String(), "debugging")
		assert.Contains(t, buf.String(), "service=inventory")
	})

	t.Run("production preset writes json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithProduction("sales"),
			logger.WithOutput(&buf),
		)

		log.Debug("dropped")
		log.Info("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), `"env":"production"`)
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithContextValue("tenant", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "store-42")
	log.InfoContext(ctx, "with tenant")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "store-42", record["tenant"])

	buf.Reset()
	log.InfoContext(context.Background(), "without tenant")
	assert.NotContains(t, buf.String(), "tenant")
}

func TestContextHandlerKeepsExtractorsAcrossWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logger.NewContextHandler(
		slog.NewJSONHandler(&buf, nil),
		func(ctx context.Context) (slog.Attr, bool) {
			return slog.String("source", "ctx"), true
		},
	)

	log := slog.New(h).With(slog.String("static", "yes"))
	log.InfoContext(context.Background(), "msg")

	assert.Contains(t, buf.String(), `"source":"ctx"`)
	assert.Contains(t, buf.String(), `"static":"yes"`)
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := logger.Discard()
	assert.NotPanics(t, func() { log.Error("nothing") })
}
