package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/retailhub/foundation/core/pipeline"
)

// DefaultCapacity is the number of entries a Store holds unless configured otherwise.
const DefaultCapacity = 10_000

type storeEntry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// Store is an in-process pipeline.CacheStore with LRU eviction, per-entry
// TTL and tag invalidation.
type Store struct {
	lru  *LRUCache[string, storeEntry]
	tags map[string]map[string]struct{}
	now  func() time.Time
	mu   sync.Mutex
}

var (
	_ pipeline.CacheStore       = (*Store)(nil)
	_ pipeline.CacheInvalidator = (*Store)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	capacity int
	now      func() time.Time
}

// WithCapacity bounds the number of entries.
func WithCapacity(n int) StoreOption {
	return func(c *storeConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	cfg := storeConfig{capacity: DefaultCapacity, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		lru:  NewLRUCache[string, storeEntry](cfg.capacity),
		tags: make(map[string]map[string]struct{}),
		now:  cfg.now,
	}
	// Eviction only happens inside Set, which already holds mu.
	s.lru.SetEvictCallback(func(key string, e storeEntry) {
		s.untag(key, e.tags)
	})
	return s
}

// Get implements pipeline.CacheStore. Expired entries are dropped on read.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.lru.Remove(key)
		s.untag(key, e.tags)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements pipeline.CacheStore. A zero TTL stores without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte, policy pipeline.CachePolicy) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := storeEntry{
		value: bytes.Clone(value),
		tags:  append([]string(nil), policy.Tags...),
	}
	if policy.TTL > 0 {
		e.expiresAt = s.now().Add(policy.TTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.lru.Get(key); ok {
		s.untag(key, old.tags)
	}
	s.lru.Put(key, e)
	for _, tag := range e.tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// Delete removes a single key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.lru.Remove(key); ok {
		s.untag(key, e.tags)
	}
	return nil
}

// Invalidate implements pipeline.CacheInvalidator, removing every entry
// carrying any of the tags.
func (s *Store) Invalidate(ctx context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range tags {
		for key := range s.tags[tag] {
			if e, ok := s.lru.Remove(key); ok {
				s.untag(key, e.tags)
			}
		}
		delete(s.tags, tag)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet read.
func (s *Store) Len() int {
	return s.lru.Len()
}

// untag must be called with mu held.
func (s *Store) untag(key string, tags []string) {
	for _, tag := range tags {
		keys := s.tags[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.tags, tag)
		}
	}
}
