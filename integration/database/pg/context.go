package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// txContextKey is an unexported key type to avoid context key collisions.
type txContextKey struct{}

// WithTx returns a new context carrying the provided pgx.Tx.
// If ctx is nil, context.Background() is used. If tx is nil, the original
// context is returned unchanged.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction repositories should run on.
// A tx attached with WithTx wins; otherwise the transaction of the active
// unit of work opened by the Transaction behavior is used.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx, true
	}
	if tx, ok := From(ctx); ok {
		return tx.Conn(), true
	}
	return nil, false
}
