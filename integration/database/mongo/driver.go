package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/retailhub/foundation/core/pipeline"
	"github.com/retailhub/foundation/core/unitofwork"
)

// Session is the part of *mongo.Session a unit of work needs.
type Session interface {
	StartTransaction(opts ...options.Lister[options.TransactionOptions]) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
	EndSession(ctx context.Context)
}

// SessionStarter opens a session for one unit of work.
type SessionStarter func(ctx context.Context) (Session, error)

// BulkWriter is satisfied by *mongo.Collection.
type BulkWriter interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error)
}

// Driver is a unitofwork.Driver running each unit of work in a
// multi-document transaction. Transactions need a replica set or sharded cluster.
type Driver struct {
	start  SessionStarter
	txOpts []options.Lister[options.TransactionOptions]
}

var _ unitofwork.Driver = (*Driver)(nil)

// NewDriver returns a driver opening sessions on client.
func NewDriver(client *mongo.Client, opts ...options.Lister[options.TransactionOptions]) *Driver {
	return NewSessionDriver(func(ctx context.Context) (Session, error) {
		sess, err := client.StartSession()
		if err != nil {
			return nil, err
		}
		return sess, nil
	}, opts...)
}

// NewSessionDriver returns a driver using start to open sessions.
func NewSessionDriver(start SessionStarter, opts ...options.Lister[options.TransactionOptions]) *Driver {
	return &Driver{start: start, txOpts: opts}
}

// Begin implements unitofwork.Driver.
func (d *Driver) Begin(ctx context.Context) (unitofwork.Tx, error) {
	sess, err := d.start(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToStartSession, ClassifyError(err))
	}
	if err := sess.StartTransaction(d.txOpts...); err != nil {
		sess.EndSession(ctx)
		return nil, ClassifyError(err)
	}
	return &Tx{sess: sess}, nil
}

type pendingWrites struct {
	coll   BulkWriter
	models []mongo.WriteModel
}

// Tx is an open MongoDB transaction with write models queued per collection.
type Tx struct {
	sess Session

	mu      sync.Mutex
	pending []pendingWrites
	ended   bool
}

var _ unitofwork.Tx = (*Tx)(nil)

// Queue adds write models for coll. Consecutive models for the same
// collection are sent in one BulkWrite.
func (t *Tx) Queue(coll BulkWriter, models ...mongo.WriteModel) {
	if len(models) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.pending); n > 0 && t.pending[n-1].coll == coll {
		t.pending[n-1].models = append(t.pending[n-1].models, models...)
		return
	}
	t.pending = append(t.pending, pendingWrites{coll: coll, models: models})
}

// Pending returns the number of queued write models.
func (t *Tx) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, p := range t.pending {
		n += len(p.models)
	}
	return n
}

// Context binds the session to ctx so reads and immediate writes join the
// transaction.
func (t *Tx) Context(ctx context.Context) context.Context {
	if sess, ok := t.sess.(*mongo.Session); ok {
		return mongo.NewSessionContext(ctx, sess)
	}
	return ctx
}

// Flush sends queued writes in order and returns the number of documents
// inserted, modified, upserted and deleted. The queue is emptied even on failure.
func (t *Tx) Flush(ctx context.Context) (int64, error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	ctx = t.Context(ctx)

	var affected int64
	for _, p := range pending {
		res, err := p.coll.BulkWrite(ctx, p.models)
		if res != nil {
			affected += res.InsertedCount + res.ModifiedCount + res.UpsertedCount + res.DeletedCount
		}
		if err != nil {
			return affected, ClassifyError(fmt.Errorf("bulk write: %w", err))
		}
	}
	return affected, nil
}

// Commit implements unitofwork.Tx. The session ends on return.
func (t *Tx) Commit(ctx context.Context) error {
	if !t.end() {
		return nil
	}
	ctx = t.Context(ctx)
	defer t.sess.EndSession(ctx)
	return ClassifyError(t.sess.CommitTransaction(ctx))
}

// Rollback implements unitofwork.Tx. The session ends on return.
// Rolling back after Commit, successful or not, is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if !t.end() {
		return nil
	}
	ctx = t.Context(ctx)
	defer t.sess.EndSession(ctx)
	return ClassifyError(t.sess.AbortTransaction(ctx))
}

// end marks the session as ended and reports whether this call did it.
func (t *Tx) end() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return false
	}
	t.ended = true
	return true
}

// From returns the MongoDB transaction of the unit of work on ctx.
func From(ctx context.Context) (*Tx, bool) {
	uow, ok := unitofwork.From(ctx)
	if !ok {
		return nil, false
	}
	tx, ok := uow.Tx()
	if !ok {
		return nil, false
	}
	mTx, ok := tx.(*Tx)
	return mTx, ok
}

// Error labels the server attaches to failures that are safe to retry.
const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
)

type labeledError interface {
	HasErrorLabel(label string) bool
}

// ClassifyError tags MongoDB failures with a pipeline failure kind.
// Timeouts become KindTimeout; network errors and errors labeled as transient
// by the server become KindTransientNetwork. Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) {
		return pipeline.Timeout(err)
	}
	if mongo.IsNetworkError(err) {
		return pipeline.Transient(err)
	}

	var le labeledError
	if errors.As(err, &le) && (le.HasErrorLabel(labelTransientTransaction) || le.HasErrorLabel(labelUnknownCommitResult)) {
		return pipeline.Transient(err)
	}
	return err
}
