// Package store implements the Redis-backed cache, identity mapping and
// recency tracking used by the resolver and the discovery engine.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a TTL key-value store for raw upstream payloads, normalized
// records and preview estimates.
type Cache struct {
	rdb redis.UniversalClient
}

// NewCache creates a cache backed by the given Redis client.
func NewCache(rdb redis.UniversalClient) *Cache {
	return &Cache{rdb: rdb}
}

// FiltersKey returns a stable fingerprint for an ordered filter tuple.
// Identical filter combinations share a key namespace; distinct ones never
// collide.
func FiltersKey(parts ...any) string {
	strs := make([]string, len(parts))
	for i, part := range parts {
		if part == nil {
			continue
		}
		strs[i] = fmt.Sprintf("%v", part)
	}
	sum := sha1.Sum([]byte(strings.Join(strs, "|")))
	return hex.EncodeToString(sum[:])
}

// GetJSON loads a cached JSON value into target. The bool result
// distinguishes "not cached" from a cached null.
func (c *Cache) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if target == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		slog.Warn("failed to unmarshal cached value, treating as miss", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetJSON stores a JSON value with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
