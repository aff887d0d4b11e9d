package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailhub/foundation/core/pipeline"
)

// addTagsScript adds ARGV[1] to every tag set in KEYS and stretches each
// set's expiry to at least ARGV[2] milliseconds. Zero makes the set permanent.
// A set that is already permanent stays permanent.
const addTagsScript = `
local ttl = tonumber(ARGV[2])
for _, key in ipairs(KEYS) do
	local existed = redis.call('EXISTS', key)
	redis.call('SADD', key, ARGV[1])
	if ttl <= 0 then
		redis.call('PERSIST', key)
	elseif existed == 0 then
		redis.call('PEXPIRE', key, ttl)
	else
		local current = redis.call('PTTL', key)
		if current >= 0 and current < ttl then
			redis.call('PEXPIRE', key, ttl)
		end
	end
end
return 0
`

func tagTTL(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return max(ttl.Milliseconds(), 1)
}

// CacheStore is a pipeline.CacheStore shared across processes.
// Entries live under prefix+key. Every tag is a Redis set of member keys
// under prefix+"tag:"+tag.
type CacheStore struct {
	client redis.UniversalClient
	prefix string
}

var (
	_ pipeline.CacheStore       = (*CacheStore)(nil)
	_ pipeline.CacheInvalidator = (*CacheStore)(nil)
)

// NewCacheStore wraps client. An empty prefix defaults to "cache:".
func NewCacheStore(client redis.UniversalClient, prefix string) *CacheStore {
	if prefix == "" {
		prefix = "cache:"
	}
	return &CacheStore{client: client, prefix: prefix}
}

// Get implements pipeline.CacheStore.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache get: %w", err)
	}
	return data, true, nil
}

// Set implements pipeline.CacheStore. The value and its tag memberships are
// written in one MULTI/EXEC transaction. A zero TTL stores without expiry.
// A tag set expires no earlier than the longest-lived entry added to it.
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, policy pipeline.CachePolicy) error {
	fullKey := s.prefix + key

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fullKey, value, policy.TTL)
		if len(policy.Tags) == 0 {
			return nil
		}
		tagKeys := make([]string, len(policy.Tags))
		for i, tag := range policy.Tags {
			tagKeys[i] = s.tagKey(tag)
		}
		pipe.Eval(ctx, addTagsScript, tagKeys, fullKey, tagTTL(policy.TTL))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Delete removes a single key.
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis cache delete: %w", err)
	}
	return nil
}

// Invalidate implements pipeline.CacheInvalidator. Members of every tag set
// are deleted together with the sets.
func (s *CacheStore) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagKey := s.tagKey(tag)

		keys, err := s.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("redis cache invalidate %s: %w", tag, err)
		}

		if err := s.client.Del(ctx, append(keys, tagKey)...).Err(); err != nil {
			return fmt.Errorf("redis cache invalidate %s: %w", tag, err)
		}
	}
	return nil
}

func (s *CacheStore) tagKey(tag string) string {
	return s.prefix + "tag:" + tag
}
