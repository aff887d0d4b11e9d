package pipeline_test

import (
	"context"
	"sync"
	"time"

	"github.com/retailhub/foundation/core/pipeline"
)

type GetProduct struct {
	SKU string
}

func (q GetProduct) CacheKey() string { return "product:" + q.SKU }

func (q GetProduct) CachePolicy() pipeline.CachePolicy {
	return pipeline.CachePolicy{TTL: time.Minute, Tags: []string{"products"}}
}

type Product struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type CreateSale struct {
	StoreID string
	Items   []string
}

type Sale struct {
	ID    string
	Total int64
}

type SyncInventory struct {
	StoreID string
	Policy  pipeline.RetryPolicy
}

func (c SyncInventory) RetryPolicy() pipeline.RetryPolicy { return c.Policy }

// memoryStore is a minimal concurrent CacheStore.
type memoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	policies map[string]pipeline.CachePolicy
	getErr   error
	setErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data:     make(map[string][]byte),
		policies: make(map[string]pipeline.CachePolicy),
	}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte, policy pipeline.CachePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.policies[key] = policy
	return nil
}

func (s *memoryStore) value(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memoryStore) policy(key string) pipeline.CachePolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policies[key]
}

// recordingUnitOfWork counts lifecycle calls.
type recordingUnitOfWork struct {
	mu          sync.Mutex
	active      bool
	begins      int
	commits     int
	rollbacks   int
	beginErr    error
	commitErr   error
	rollbackErr error

	// failCommits are returned by successive commits before commitErr applies.
	failCommits []error
}

func (u *recordingUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.beginErr != nil {
		return u.beginErr
	}
	if u.active {
		return nil
	}
	u.begins++
	u.active = true
	return nil
}

func (u *recordingUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return nil
	}
	if len(u.failCommits) > 0 {
		err := u.failCommits[0]
		u.failCommits = u.failCommits[1:]
		return err
	}
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	u.active = false
	return nil
}

func (u *recordingUnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return nil
	}
	u.rollbacks++
	u.active = false
	return u.rollbackErr
}

func (u *recordingUnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	return 0, nil
}

func (u *recordingUnitOfWork) counts() (begins, commits, rollbacks int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.begins, u.commits, u.rollbacks
}

func (u *recordingUnitOfWork) isActive() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active
}

func staticFactory(uow pipeline.UnitOfWork) pipeline.UnitOfWorkFactory {
	return func(ctx context.Context) (pipeline.UnitOfWork, error) {
		return uow, nil
	}
}

// orderProbe records the before/after phases of a behavior.
func orderProbe(name string, mu *sync.Mutex, events *[]string) pipeline.Behavior {
	return pipeline.BehaviorFunc(func(ctx context.Context, call *pipeline.Call, next pipeline.Next) (any, error) {
		mu.Lock()
		*events = append(*events, name+":before")
		mu.Unlock()

		res, err := next(ctx)

		mu.Lock()
		*events = append(*events, name+":after")
		mu.Unlock()
		return res, err
	})
}
