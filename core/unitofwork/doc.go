// Package unitofwork implements the pipeline.UnitOfWork lifecycle over
// pluggable transaction drivers.
//
// A UnitOfWork moves between four states: none, active, committed and
// rolled back. Begin is idempotent while active. Commit and Rollback are
// no-ops when nothing is active, so the Transaction behavior can always call
// them safely. Commit flushes pending changes before committing.
//
// Drivers for PostgreSQL, MongoDB and database/sql live under
// integration/database.
//
// Usage:
//
//	import (
//		"github.com/retailhub/foundation/core/pipeline"
//		"github.com/retailhub/foundation/core/unitofwork"
//		"github.com/retailhub/foundation/integration/database/pg"
//	)
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Transaction(unitofwork.Factory(pg.NewDriver(pool))),
//	))
//
// Inside a handler the current unit is available from the context:
//
//	uow, ok := unitofwork.From(ctx)
package unitofwork
