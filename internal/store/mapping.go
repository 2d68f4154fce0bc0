package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMappingTTL keeps cross-references for 30 days; source-side IDs
// rarely change.
const DefaultMappingTTL = 30 * 24 * time.Hour

// Refs holds the cross-references known for a movie. Zero values mean the
// reference is not known yet.
type Refs struct {
	TMDBID int
	KPID   int
	IMDBID string
}

// Mapping is the persistent cross-reference between TMDB, Poiskkino and IMDb
// identifiers. Writes are partial merges: absent fields never overwrite
// known ones, and every new fact is written from both key directions.
type Mapping struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewMapping creates a mapping store with the default TTL.
func NewMapping(rdb redis.UniversalClient) *Mapping {
	return &Mapping{rdb: rdb, ttl: DefaultMappingTTL}
}

// NewMappingWithTTL creates a mapping store with a custom entry TTL.
func NewMappingWithTTL(rdb redis.UniversalClient, ttl time.Duration) *Mapping {
	return &Mapping{rdb: rdb, ttl: ttl}
}

func tmdbKey(tmdbID int) string { return fmt.Sprintf("hmap:tmdb:%d", tmdbID) }
func kpKey(kpID int) string     { return fmt.Sprintf("hmap:kp:%d", kpID) }

// ByTMDB looks up the counterpart IDs for a TMDB ID.
func (m *Mapping) ByTMDB(ctx context.Context, tmdbID int) (Refs, error) {
	raw, err := m.rdb.HGetAll(ctx, tmdbKey(tmdbID)).Result()
	if err != nil {
		return Refs{}, fmt.Errorf("mapping get tmdb:%d: %w", tmdbID, err)
	}
	refs := Refs{TMDBID: tmdbID, IMDBID: raw["imdb_id"]}
	if kpID, err := strconv.Atoi(raw["kp_id"]); err == nil {
		refs.KPID = kpID
	}
	return refs, nil
}

// ByKP looks up the counterpart IDs for a Poiskkino ID.
func (m *Mapping) ByKP(ctx context.Context, kpID int) (Refs, error) {
	raw, err := m.rdb.HGetAll(ctx, kpKey(kpID)).Result()
	if err != nil {
		return Refs{}, fmt.Errorf("mapping get kp:%d: %w", kpID, err)
	}
	refs := Refs{KPID: kpID, IMDBID: raw["imdb_id"]}
	if tmdbID, err := strconv.Atoi(raw["tmdb_id"]); err == nil {
		refs.TMDBID = tmdbID
	}
	return refs, nil
}

// Put merges any newly learned cross-references into both key directions.
// Zero/empty fields are skipped, never written as nulls.
func (m *Mapping) Put(ctx context.Context, tmdbID, kpID int, imdbID string) error {
	pipe := m.rdb.Pipeline()
	queued := false

	if tmdbID > 0 {
		fields := map[string]any{}
		if kpID > 0 {
			fields["kp_id"] = strconv.Itoa(kpID)
		}
		if imdbID != "" {
			fields["imdb_id"] = imdbID
		}
		if len(fields) > 0 {
			key := tmdbKey(tmdbID)
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, m.ttl)
			queued = true
		}
	}

	if kpID > 0 {
		fields := map[string]any{}
		if tmdbID > 0 {
			fields["tmdb_id"] = strconv.Itoa(tmdbID)
		}
		if imdbID != "" {
			fields["imdb_id"] = imdbID
		}
		if len(fields) > 0 {
			key := kpKey(kpID)
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, m.ttl)
			queued = true
		}
	}

	if !queued {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mapping put tmdb:%d kp:%d: %w", tmdbID, kpID, err)
	}
	return nil
}
