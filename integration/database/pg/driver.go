package pg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/retailhub/foundation/core/unitofwork"
)

// Beginner opens pgx transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Driver is a unitofwork.Driver backed by PostgreSQL.
type Driver struct {
	db Beginner
}

var _ unitofwork.Driver = (*Driver)(nil)

// NewDriver returns a driver opening transactions on db.
//
// Example:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//	    pipeline.Transaction(unitofwork.Factory(pg.NewDriver(pool))),
//	))
func NewDriver(db Beginner) *Driver {
	return &Driver{db: db}
}

// Begin implements unitofwork.Driver.
func (d *Driver) Begin(ctx context.Context) (unitofwork.Tx, error) {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return nil, ClassifyError(err)
	}
	return &Tx{tx: tx, batch: &pgx.Batch{}}, nil
}

// Tx is an open PostgreSQL transaction with a queue of pending statements.
// Queued statements are sent as one batch on Flush.
type Tx struct {
	tx pgx.Tx

	mu    sync.Mutex
	batch *pgx.Batch
}

var _ unitofwork.Tx = (*Tx)(nil)

// Queue adds a statement to the pending batch.
func (t *Tx) Queue(sql string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batch.Queue(sql, args...)
}

// Pending returns the number of queued statements.
func (t *Tx) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.batch.Len()
}

// Conn returns the underlying transaction for reads and immediate writes.
func (t *Tx) Conn() pgx.Tx {
	return t.tx
}

// Flush sends the queued statements in one round trip and returns the total
// number of affected rows. The queue is emptied even when a statement fails.
func (t *Tx) Flush(ctx context.Context) (int64, error) {
	t.mu.Lock()
	batch := t.batch
	t.batch = &pgx.Batch{}
	t.mu.Unlock()

	n := batch.Len()
	if n == 0 {
		return 0, nil
	}

	results := t.tx.SendBatch(ctx, batch)

	var affected int64
	for i := range n {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return affected, ClassifyError(fmt.Errorf("statement %d: %w", i+1, err))
		}
		affected += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		return affected, ClassifyError(err)
	}
	return affected, nil
}

// Commit implements unitofwork.Tx.
func (t *Tx) Commit(ctx context.Context) error {
	return ClassifyError(t.tx.Commit(ctx))
}

// Rollback implements unitofwork.Tx. Rolling back a closed transaction,
// e.g. after a failed commit, is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return ClassifyError(err)
	}
	return nil
}

// From returns the PostgreSQL transaction of the unit of work on ctx.
func From(ctx context.Context) (*Tx, bool) {
	uow, ok := unitofwork.From(ctx)
	if !ok {
		return nil, false
	}
	tx, ok := uow.Tx()
	if !ok {
		return nil, false
	}
	pgTx, ok := tx.(*Tx)
	return pgTx, ok
}
