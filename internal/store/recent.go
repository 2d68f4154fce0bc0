package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recent tracks which movie IDs were already served per filter fingerprint,
// so repeat spins stay varied within the TTL window.
type Recent struct {
	rdb redis.UniversalClient
}

// NewRecent creates a recency tracker backed by the given Redis client.
func NewRecent(rdb redis.UniversalClient) *Recent {
	return &Recent{rdb: rdb}
}

// Add records a served ID and enforces the size cap. Overflow members are
// evicted at random (SPOP), not least-recently-used; callers depend on the
// resulting variety.
func (r *Recent) Add(ctx context.Context, key, movieID string, ttl time.Duration, limit int) error {
	pipe := r.rdb.Pipeline()
	pipe.SAdd(ctx, key, movieID)
	pipe.Expire(ctx, key, ttl)
	card := pipe.SCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recent add %s: %w", key, err)
	}

	size := card.Val()
	if limit > 0 && size > int64(limit) {
		if err := r.rdb.SPopN(ctx, key, size-int64(limit)).Err(); err != nil {
			return fmt.Errorf("recent trim %s: %w", key, err)
		}
	}
	return nil
}

// Members returns the set of recently served IDs for a fingerprint.
func (r *Recent) Members(ctx context.Context, key string) (map[string]struct{}, error) {
	ids, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("recent members %s: %w", key, err)
	}
	members := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return members, nil
}

// Clear drops the whole recency set. Used when a filter combination has run
// out of fresh candidates.
func (r *Recent) Clear(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("recent clear %s: %w", key, err)
	}
	return nil
}
