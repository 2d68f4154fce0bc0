// Package genres serves the selectable genre lists for both catalogs,
// cached long-term because they change maybe once a year.
package genres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/filmspin/filmspin/internal/movie"
	"github.com/filmspin/filmspin/internal/store"
)

// Genre is one selectable genre. The global catalog identifies genres by
// numeric ID, the regional one by lowercase name, so ID carries either.
type Genre struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

// RegionalLister is the subset of the regional catalog client genres needs.
type RegionalLister interface {
	GetList(ctx context.Context, path string, params url.Values) ([]map[string]any, error)
}

const defaultTTL = 30 * 24 * time.Hour

// Service loads and caches genre lists.
type Service struct {
	cache *store.Cache
	tmdb  movie.CatalogClient
	kp    RegionalLister
	ttl   time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithTTL overrides how long genre lists stay cached.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// NewService creates a genre service over the given cache and clients.
func NewService(cache *store.Cache, tmdbClient movie.CatalogClient, kpClient RegionalLister, opts ...Option) *Service {
	s := &Service{cache: cache, tmdb: tmdbClient, kp: kpClient, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Global returns the global catalog's genre list for the given language.
func (s *Service) Global(ctx context.Context, lang string) ([]Genre, error) {
	lang = movie.NormalizeLang(lang)
	key := "genres:" + lang
	var cached []Genre
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	params := url.Values{}
	params.Set("language", lang)
	payload, err := s.tmdb.Get(ctx, "/genre/movie/list", params)
	if err != nil {
		return nil, fmt.Errorf("genre list: %w", err)
	}

	var items []Genre
	if raw, ok := payload["genres"].([]any); ok {
		for _, entry := range raw {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := item["name"].(string)
			if name == "" {
				continue
			}
			items = append(items, Genre{ID: item["id"], Name: name})
		}
	}
	s.cacheList(ctx, key, items)
	return items, nil
}

// Regional returns the regional catalog's genre list. The catalog reports
// lowercase names; the lowercase form doubles as the filter ID and the
// display name gets a capital first letter.
func (s *Service) Regional(ctx context.Context) ([]Genre, error) {
	key := "genres:ru"
	var cached []Genre
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	params := url.Values{}
	params.Set("field", "genres.name")
	values, err := s.kp.GetList(ctx, "/v1/movie/possible-values-by-field", params)
	if err != nil {
		return nil, fmt.Errorf("genre list: %w", err)
	}

	var items []Genre
	for _, value := range values {
		name, _ := value["name"].(string)
		if name == "" {
			continue
		}
		items = append(items, Genre{ID: strings.ToLower(name), Name: ucfirst(name)})
	}
	s.cacheList(ctx, key, items)
	return items, nil
}

func (s *Service) cacheList(ctx context.Context, key string, items []Genre) {
	// Best effort: a failed cache write only costs the next caller a fetch.
	_ = s.cache.SetJSON(ctx, key, items, s.ttl)
}

func ucfirst(value string) string {
	if value == "" {
		return value
	}
	runes := []rune(value)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
