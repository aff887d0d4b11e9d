package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retailhub/foundation/core/pipeline"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want pipeline.Kind
	}{
		{"nil", nil, pipeline.KindUnknown},
		{"plain error", errors.New("sku not found"), pipeline.KindPersistent},
		{"deadline exceeded", context.DeadlineExceeded, pipeline.KindTimeout},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), pipeline.KindTimeout},
		{"os deadline", os.ErrDeadlineExceeded, pipeline.KindTimeout},
		{"canceled", context.Canceled, pipeline.KindCanceled},
		{"connection reset", syscall.ECONNRESET, pipeline.KindTransientNetwork},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), pipeline.KindTransientNetwork},
		{"broken pipe", syscall.EPIPE, pipeline.KindTransientNetwork},
		{"unexpected eof", io.ErrUnexpectedEOF, pipeline.KindTransientNetwork},
		{"net op error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("boom")}, pipeline.KindTransientNetwork},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, pipeline.KindTransientNetwork},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, pipeline.KindTimeout},
		{"unknown host", &net.DNSError{Err: "no such host", IsNotFound: true}, pipeline.KindPersistent},
		{"validation", &pipeline.ValidationError{Request: "CreateSale"}, pipeline.KindValidation},
		{"explicit transient", pipeline.Transient(errors.New("x")), pipeline.KindTransientNetwork},
		{"explicit persistent wins over timeout", pipeline.Persistent(context.DeadlineExceeded), pipeline.KindPersistent},
		{"explicit canceled", pipeline.Canceled(errors.New("client aborted")), pipeline.KindCanceled},
		{"wrapped explicit", fmt.Errorf("sync: %w", pipeline.Timeout(errors.New("x"))), pipeline.KindTimeout},
		{"transaction", pipeline.NewError(pipeline.KindTransaction, "transaction.commit", errors.New("x")), pipeline.KindTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pipeline.Classify(tt.err))
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	t.Run("includes the operation", func(t *testing.T) {
		t.Parallel()

		err := pipeline.NewError(pipeline.KindTransaction, "transaction.begin", errors.New("pool exhausted"))
		assert.Equal(t, "transaction.begin: pool exhausted", err.Error())
	})

	t.Run("nil cause yields nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, pipeline.NewError(pipeline.KindTimeout, "op", nil))
		assert.NoError(t, pipeline.Transient(nil))
	})

	t.Run("retry exhausted message and unwrap", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("warehouse offline")
		err := &pipeline.RetryExhaustedError{Request: "SyncInventory", Attempts: 3, Err: cause}
		assert.Equal(t, "request SyncInventory failed after 3 attempts: warehouse offline", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, pipeline.ErrRetryExhausted)
		assert.NotErrorIs(t, err, pipeline.ErrValidation)
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "transient_network", pipeline.KindTransientNetwork.String())
	assert.Equal(t, "validation", pipeline.KindValidation.String())
	assert.Equal(t, "unknown", pipeline.Kind(200).String())
}
