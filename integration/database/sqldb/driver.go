package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/retailhub/foundation/core/unitofwork"
)

// Driver is a unitofwork.Driver for any database/sql backend.
type Driver struct {
	db   *sql.DB
	opts *sql.TxOptions
}

var _ unitofwork.Driver = (*Driver)(nil)

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTxOptions sets the isolation level and read-only flag of every transaction.
func WithTxOptions(opts sql.TxOptions) DriverOption {
	return func(d *Driver) {
		d.opts = &opts
	}
}

// NewDriver returns a driver opening transactions on db.
func NewDriver(db *sql.DB, opts ...DriverOption) *Driver {
	d := &Driver{db: db}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Begin implements unitofwork.Driver.
func (d *Driver) Begin(ctx context.Context) (unitofwork.Tx, error) {
	if d.db == nil {
		return nil, ErrNilDB
	}
	tx, err := d.db.BeginTx(ctx, d.opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

type statement struct {
	query string
	args  []any
}

// Tx is an open database/sql transaction with a queue of pending statements.
type Tx struct {
	tx *sql.Tx

	mu      sync.Mutex
	pending []statement
}

var _ unitofwork.Tx = (*Tx)(nil)

// Queue adds a statement executed on the next Flush.
func (t *Tx) Queue(query string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, statement{query: query, args: args})
}

// Pending returns the number of queued statements.
func (t *Tx) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Conn returns the underlying transaction for reads and immediate writes.
func (t *Tx) Conn() *sql.Tx {
	return t.tx
}

// Flush executes the queued statements in order and returns the total number
// of affected rows. Drivers that cannot report affected rows count as zero.
// The queue is emptied even when a statement fails.
func (t *Tx) Flush(ctx context.Context) (int64, error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	var affected int64
	for i, stmt := range pending {
		res, err := t.tx.ExecContext(ctx, stmt.query, stmt.args...)
		if err != nil {
			return affected, fmt.Errorf("statement %d: %w", i+1, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}
	return affected, nil
}

// Commit implements unitofwork.Tx.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback implements unitofwork.Tx. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// From returns the database/sql transaction of the unit of work on ctx.
func From(ctx context.Context) (*Tx, bool) {
	uow, ok := unitofwork.From(ctx)
	if !ok {
		return nil, false
	}
	tx, ok := uow.Tx()
	if !ok {
		return nil, false
	}
	sqlTx, ok := tx.(*Tx)
	return sqlTx, ok
}
