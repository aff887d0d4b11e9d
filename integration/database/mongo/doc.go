// Package mongo provides MongoDB client initialization, health checking and a
// unit of work driver for the pipeline Transaction behavior.
//
// New applies Config to the official driver and pings the primary, retrying
// with exponential backoff to ride out cold starts:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(ctx)
//
// # Unit of Work
//
// NewDriver runs every unit of work in a multi-document transaction on its own
// session. Handlers queue write models and the Transaction behavior sends them
// with BulkWrite, one call per run of consecutive models for a collection,
// right before commit:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Transaction(unitofwork.Factory(mongo.NewDriver(client))),
//	))
//
//	pipeline.Register(d, func(ctx context.Context, cmd AdjustStock) (int, error) {
//		tx, _ := mongo.From(ctx)
//		tx.Queue(stock, driver.NewUpdateOneModel().
//			SetFilter(bson.M{"sku": cmd.SKU}).
//			SetUpdate(bson.M{"$inc": bson.M{"qty": cmd.Delta}}))
//		return cmd.Delta, nil
//	})
//
// Reads that must see uncommitted writes use tx.Context(ctx).
// Transactions require a replica set or a sharded cluster.
//
// # Configuration
//
//	MONGODB_URL                 (required)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//
// # Errors
//
//	ErrEmptyConnectionURL     - no connection URL was provided
//	ErrFailedToConnectToMongo - the URL is invalid or every ping failed
//	ErrHealthcheckFailed      - the health check ping failed
//	ErrFailedToStartSession   - a unit of work could not open a session
//
// ClassifyError marks timeouts, network errors and server errors labeled
// TransientTransactionError or UnknownTransactionCommitResult so the Retry
// behavior retries them.
package mongo
