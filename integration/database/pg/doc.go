// Package pg provides PostgreSQL connection management, migrations, health
// checking and a unit of work driver for the pipeline Transaction behavior.
//
// # Connecting
//
// Connect builds a pgxpool.Pool from Config and pings it, retrying with
// exponential backoff:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil && !errors.Is(err, pg.ErrMigrationsDirNotFound) {
//		return err
//	}
//
// Migrate applies goose migrations through the pgx database/sql bridge.
//
// # Unit of Work
//
// NewDriver adapts a pool to unitofwork.Driver. Handlers queue writes on the
// transaction of the current request and the Transaction behavior flushes them
// as a single pgx batch right before commit:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Transaction(unitofwork.Factory(pg.NewDriver(pool))),
//	))
//
//	pipeline.Register(d, func(ctx context.Context, cmd RecordReturn) (bool, error) {
//		tx, _ := pg.From(ctx)
//		tx.Queue("INSERT INTO returns (sale_id, reason) VALUES ($1, $2)", cmd.SaleID, cmd.Reason)
//		return true, nil
//	})
//
// Repositories that need to read inside the same transaction use
// TxFromContext, which prefers a tx attached with WithTx and falls back to the
// unit of work opened by the pipeline.
//
// # Errors
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError inspect common failures. ClassifyError tags serialization
// failures, deadlocks and connection errors as transient and canceled
// statements as timeouts, so the Retry behavior retries them. Every error the
// driver returns has already been through ClassifyError.
package pg
