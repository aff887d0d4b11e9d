package unitofwork

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/retailhub/foundation/core/logger"
	"github.com/retailhub/foundation/core/pipeline"
)

var (
	// ErrNoTransaction is returned by SaveChanges outside of an active transaction.
	ErrNoTransaction = errors.New("no active transaction")

	// ErrNilDriver is returned by the factory when no driver is configured.
	ErrNilDriver = errors.New("unit of work driver cannot be nil")
)

// Tx is one backend transaction with a queue of pending changes.
type Tx interface {
	// Flush writes pending changes and reports how many were written.
	Flush(ctx context.Context) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Driver opens backend transactions.
type Driver interface {
	Begin(ctx context.Context) (Tx, error)
}

// DriverFunc adapts an ordinary function to the Driver interface.
type DriverFunc func(ctx context.Context) (Tx, error)

// Begin calls f.
func (f DriverFunc) Begin(ctx context.Context) (Tx, error) {
	return f(ctx)
}

// State is the lifecycle position of a unit of work.
type State uint8

const (
	StateNone State = iota
	StateActive
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "none"
	}
}

// UnitOfWork implements pipeline.UnitOfWork on top of a Driver.
// A terminal state is not final: the next Begin opens a fresh transaction.
type UnitOfWork struct {
	driver Driver
	logger *slog.Logger

	mu    sync.Mutex
	tx    Tx
	state State
}

var _ pipeline.UnitOfWork = (*UnitOfWork)(nil)

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithLogger sets the logger used for best-effort rollbacks.
func WithLogger(log *slog.Logger) Option {
	return func(u *UnitOfWork) {
		if log != nil {
			u.logger = log
		}
	}
}

// New creates a unit of work in StateNone.
func New(driver Driver, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		driver: driver,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Factory returns a pipeline.UnitOfWorkFactory creating one unit of work per request.
//
// Example:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//	    pipeline.Transaction(unitofwork.Factory(pg.NewDriver(pool))),
//	))
func Factory(driver Driver, opts ...Option) pipeline.UnitOfWorkFactory {
	return func(ctx context.Context) (pipeline.UnitOfWork, error) {
		if driver == nil {
			return nil, ErrNilDriver
		}
		return New(driver, opts...), nil
	}
}

// From returns the unit of work the Transaction behavior attached to ctx.
func From(ctx context.Context) (*UnitOfWork, bool) {
	uow, ok := pipeline.UnitOfWorkFrom(ctx)
	if !ok {
		return nil, false
	}
	u, ok := uow.(*UnitOfWork)
	return u, ok
}

// Begin opens a transaction. It is a no-op while one is active.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateActive {
		return nil
	}

	tx, err := u.driver.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	u.tx = tx
	u.state = StateActive
	return nil
}

// SaveChanges flushes pending changes inside the active transaction.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateActive {
		return 0, ErrNoTransaction
	}
	return u.tx.Flush(ctx)
}

// Commit flushes pending changes and commits. It is a no-op without an
// active transaction. On failure the transaction is rolled back and the
// unit ends in StateRolledBack.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateActive {
		return nil
	}

	if _, err := u.tx.Flush(ctx); err != nil {
		u.abort(ctx)
		return fmt.Errorf("flush: %w", err)
	}

	if err := u.tx.Commit(ctx); err != nil {
		u.abort(ctx)
		return fmt.Errorf("commit: %w", err)
	}

	u.tx = nil
	u.state = StateCommitted
	return nil
}

// Rollback discards the active transaction. It is a no-op without one.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateActive {
		return nil
	}

	tx := u.tx
	u.tx = nil
	u.state = StateRolledBack

	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// State returns the current lifecycle state.
func (u *UnitOfWork) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Tx returns the active backend transaction.
func (u *UnitOfWork) Tx() (Tx, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateActive {
		return nil, false
	}
	return u.tx, true
}

// abort rolls back after a failed commit. Must be called with mu held.
func (u *UnitOfWork) abort(ctx context.Context) {
	tx := u.tx
	u.tx = nil
	u.state = StateRolledBack

	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		u.logger.ErrorContext(ctx, "rollback after failed commit",
			logger.Component("unitofwork"),
			logger.Error(err))
	}
}
