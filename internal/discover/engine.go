package discover

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/filmspin/filmspin/internal/errors"
	"github.com/filmspin/filmspin/internal/movie"
	"github.com/filmspin/filmspin/internal/store"
)

// Resolver turns a candidate ID into a fully normalized movie card.
type Resolver interface {
	Resolve(ctx context.Context, lang string, ids movie.ResolveIDs) (*movie.Card, error)
}

const (
	noResultsMessage   = "no movies found for the current filters"
	ratingFloorMessage = "no movies found for the selected rating filter, try lowering the minimum rating"

	defaultRecentTTL   = 12 * time.Hour
	defaultRecentLimit = 100
	defaultPreviewTTL  = 15 * time.Minute
)

// Engine drives randomized discovery and preview estimation.
type Engine struct {
	cache    *store.Cache
	recent   *store.Recent
	tmdb     movie.CatalogClient
	kp       movie.CatalogClient
	resolver Resolver

	rng         *rand.Rand
	recentTTL   time.Duration
	recentLimit int
	previewTTL  time.Duration
	concurrency int
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithRand sets the random source, mainly for deterministic tests.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithRecentPolicy sets the recency window TTL and cap.
func WithRecentPolicy(ttl time.Duration, limit int) EngineOption {
	return func(e *Engine) {
		e.recentTTL = ttl
		e.recentLimit = limit
	}
}

// WithPreviewTTL sets how long preview estimates are cached.
func WithPreviewTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) { e.previewTTL = ttl }
}

// NewEngine creates a discovery engine over the given stores, catalog
// clients and resolver.
func NewEngine(cache *store.Cache, recent *store.Recent, tmdbClient, kpClient movie.CatalogClient, resolver Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		cache:       cache,
		recent:      recent,
		tmdb:        tmdbClient,
		kp:          kpClient,
		resolver:    resolver,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		recentTTL:   defaultRecentTTL,
		recentLimit: defaultRecentLimit,
		previewTTL:  defaultPreviewTTL,
		concurrency: 6,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PickRandom selects one random movie from the global catalog matching the
// filters, preferring candidates not seen recently for the same filter
// combination.
func (e *Engine) PickRandom(ctx context.Context, f Filters) (*movie.Card, error) {
	f.Lang = movie.NormalizeLang(f.Lang)
	strategy := strategyFor(f.MinRating)
	params := f.discoverParams(strategy)
	recentKey := "recent:tmdb:" + f.fingerprint()

	first, err := e.tmdb.Get(ctx, "/discover/movie", pageParams(params, f.Lang, 1))
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	results := getList(first, "results")
	if len(results) == 0 {
		return nil, apperrors.NewNoResultsError(noResultsMessage)
	}
	totalPages := getInt(first, "total_pages")
	if totalPages < 1 {
		// Some listings omit the paging envelope; the populated first page
		// still counts as one page.
		totalPages = 1
	}
	if totalPages > maxCatalogPages {
		totalPages = maxCatalogPages
	}

	plan := buildPagePlan(e.rng, totalPages, strategy.ProbePages)
	pool := e.collectCandidates(ctx, f, params, first, plan)
	if len(pool) == 0 {
		return nil, apperrors.NewNoResultsError(noResultsMessage)
	}

	ordered := e.orderByRecency(ctx, recentKey, pool, strategy.Shuffle)
	if len(ordered) > strategy.MaxResolveCandidates {
		ordered = ordered[:strategy.MaxResolveCandidates]
	}

	checked, withRating := 0, 0
	for _, cand := range ordered {
		card, err := e.resolver.Resolve(ctx, f.Lang, movie.ResolveIDs{TMDBID: cand.id})
		if err != nil {
			return nil, err
		}
		checked++
		if card.IMDBRating != nil {
			withRating++
		}
		if !passesRatingFloor(card.IMDBRating, f.MinRating) {
			continue
		}
		if card.KPID != 0 && containsInt(f.ExcludeKP, card.KPID) {
			continue
		}
		if err := e.recent.Add(ctx, recentKey, strconv.Itoa(cand.id), e.recentTTL, e.recentLimit); err != nil {
			slog.Warn("recency update failed", "error", err)
		}
		card.RecommendationReason = buildReason(card, f)
		return card, nil
	}

	slog.Info("rating floor exhausted candidate pool",
		"min_rating", f.MinRating,
		"checked", checked,
		"with_rating", withRating,
		"pool", len(pool))
	return nil, apperrors.NewNoResultsError(ratingFloorMessage)
}

// collectCandidates walks the page plan, scoring every listing entry that is
// not explicitly excluded. Page 1 reuses the already fetched response; a
// failed probe page is skipped rather than failing the request.
func (e *Engine) collectCandidates(ctx context.Context, f Filters, params url.Values, first map[string]any, plan []int) []candidate {
	var pool []candidate
	seen := map[int]bool{}
	for _, page := range plan {
		payload := first
		if page != 1 {
			var err error
			payload, err = e.tmdb.Get(ctx, "/discover/movie", pageParams(params, f.Lang, page))
			if err != nil {
				slog.Warn("probe page failed", "page", page, "error", err)
				continue
			}
		}
		for _, item := range getList(payload, "results") {
			id := getInt(item, "id")
			if id == 0 || seen[id] || containsInt(f.ExcludeTMDB, id) {
				continue
			}
			seen[id] = true
			pool = append(pool, candidate{id: id, weight: candidateWeight(e.rng, item, f)})
		}
	}
	return pool
}

// orderByRecency partitions the pool into fresh and recently served
// candidates, orders each partition by strategy, and concatenates fresh
// before stale. When every candidate is stale the window has been exhausted:
// it is cleared and the whole pool counts as fresh again.
func (e *Engine) orderByRecency(ctx context.Context, recentKey string, pool []candidate, shuffle bool) []candidate {
	recent, err := e.recent.Members(ctx, recentKey)
	if err != nil {
		slog.Warn("recency lookup failed", "error", err)
		recent = nil
	}
	var fresh, stale []candidate
	for _, cand := range pool {
		if _, ok := recent[strconv.Itoa(cand.id)]; ok {
			stale = append(stale, cand)
		} else {
			fresh = append(fresh, cand)
		}
	}
	if len(fresh) == 0 {
		if err := e.recent.Clear(ctx, recentKey); err != nil {
			slog.Warn("recency reset failed", "error", err)
		}
		return orderCandidates(e.rng, pool, shuffle)
	}
	return append(orderCandidates(e.rng, fresh, shuffle), orderCandidates(e.rng, stale, shuffle)...)
}

func pageParams(params url.Values, lang string, page int) url.Values {
	out := url.Values{}
	for key, values := range params {
		out[key] = values
	}
	out.Set("language", lang)
	out.Set("page", strconv.Itoa(page))
	return out
}

// buildReason summarizes why the pick matches the request, at most four
// clauses.
func buildReason(card *movie.Card, f Filters) string {
	var clauses []string
	if f.MinRating > 0 && card.IMDBRating != nil {
		clauses = append(clauses, fmt.Sprintf("IMDb %.1f meets your %.1f minimum", *card.IMDBRating, f.MinRating))
	}
	if len(card.Genres) > 0 && f.Genres != "" {
		clauses = append(clauses, "matches your genre pick")
	}
	if card.Year > 0 && (f.YearFrom > 0 || f.YearTo > 0) {
		clauses = append(clauses, fmt.Sprintf("released in %d", card.Year))
	}
	if card.RuntimeMinutes > 0 && f.hasRuntimeBounds() {
		clauses = append(clauses, fmt.Sprintf("%d minutes long", card.RuntimeMinutes))
	}
	if len(card.Countries) > 0 && f.Country != "" {
		clauses = append(clauses, "from "+card.Countries[0])
	}
	if len(card.WatchProviders) > 0 {
		clauses = append(clauses, "streaming on "+card.WatchProviders[0])
	}
	if len(clauses) == 0 && card.TMDBVote != nil && *card.TMDBVote > 0 {
		clauses = append(clauses, fmt.Sprintf("community score %.1f", *card.TMDBVote))
	}
	if len(clauses) > 4 {
		clauses = clauses[:4]
	}
	return strings.Join(clauses, "; ")
}
