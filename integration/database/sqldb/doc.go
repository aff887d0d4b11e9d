// Package sqldb adapts database/sql to the unit of work used by the pipeline
// Transaction behavior.
//
// Any registered database/sql driver works. With pgx the stdlib bridge
// registers the "pgx" driver name:
//
//	import _ "github.com/jackc/pgx/v5/stdlib"
//
//	db, err := sqldb.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Transaction(unitofwork.Factory(sqldb.NewDriver(db,
//			sqldb.WithTxOptions(sql.TxOptions{Isolation: sql.LevelSerializable}),
//		))),
//	))
//
// Handlers queue statements on the transaction returned by From. They run in
// order when the behavior commits, or earlier through SaveChanges:
//
//	tx, _ := sqldb.From(ctx)
//	tx.Queue("UPDATE stock SET qty = qty - $1 WHERE sku = $2", cmd.Qty, cmd.SKU)
package sqldb
