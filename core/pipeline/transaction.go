package pipeline

import (
	"context"
	"log/slog"

	"github.com/retailhub/foundation/core/logger"
)

// UnitOfWork is the transactional boundary of one request.
// Begin is a no-op while a transaction is active; Commit and Rollback are
// no-ops when none is.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	SaveChanges(ctx context.Context) (int64, error)
}

// UnitOfWorkFactory creates the unit of work for one request.
type UnitOfWorkFactory func(ctx context.Context) (UnitOfWork, error)

type unitOfWorkCtx struct{}

// WithUnitOfWork attaches a unit of work to the context.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork) context.Context {
	if uow == nil {
		return ctx
	}
	return context.WithValue(ctx, unitOfWorkCtx{}, uow)
}

// UnitOfWorkFrom extracts the unit of work the Transaction behavior opened.
func UnitOfWorkFrom(ctx context.Context) (UnitOfWork, bool) {
	uow, ok := ctx.Value(unitOfWorkCtx{}).(UnitOfWork)
	return uow, ok
}

type transactionBehavior struct {
	factory UnitOfWorkFactory
	logger  *slog.Logger
}

// TransactionOption configures the Transaction behavior.
type TransactionOption func(*transactionBehavior)

// WithTransactionLogger sets the logger for rollback failures.
func WithTransactionLogger(log *slog.Logger) TransactionOption {
	return func(b *transactionBehavior) {
		if log != nil {
			b.logger = log
		}
	}
}

// Transaction wraps the rest of the pipeline in a transaction on a
// request-scoped unit of work. The handler reaches it with UnitOfWorkFrom.
// Success commits, failure rolls back and returns the original error.
// A commit failure keeps its retryable classification so an outer Retry
// can run the whole unit of work again.
// A request dispatched from inside an open transaction joins it.
func Transaction(factory UnitOfWorkFactory, opts ...TransactionOption) Behavior {
	b := &transactionBehavior{
		factory: factory,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *transactionBehavior) Handle(ctx context.Context, call *Call, next Next) (res any, err error) {
	if _, ok := UnitOfWorkFrom(ctx); ok {
		return next(ctx)
	}

	uow, err := b.factory(ctx)
	if err != nil {
		return nil, NewError(KindTransaction, "transaction.open", err)
	}
	if err := uow.Begin(ctx); err != nil {
		return nil, NewError(KindTransaction, "transaction.begin", err)
	}

	defer func() {
		if r := recover(); r != nil {
			b.rollback(ctx, call, uow)
			panic(r)
		}
	}()

	res, err = next(WithUnitOfWork(ctx, uow))
	if err != nil {
		b.rollback(ctx, call, uow)
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		b.rollback(ctx, call, uow)
		return nil, NewError(commitKind(err), "transaction.commit", err)
	}

	return res, nil
}

// commitKind keeps a timeout, transient or canceled classification of a
// commit failure. Any other commit failure is a transaction failure.
func commitKind(err error) Kind {
	switch k := Classify(err); k {
	case KindTimeout, KindTransientNetwork, KindCanceled:
		return k
	}
	return KindTransaction
}

// rollback never reports its own failure to the caller; the error that
// caused it is the one that propagates.
func (b *transactionBehavior) rollback(ctx context.Context, call *Call, uow UnitOfWork) {
	if err := uow.Rollback(context.WithoutCancel(ctx)); err != nil {
		b.logger.ErrorContext(ctx, "transaction rollback failed",
			logger.Request(call.Name),
			logger.CallID(call.ID),
			logger.Error(err))
	}
}
