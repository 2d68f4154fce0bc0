package discover

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/filmspin/filmspin/internal/movie"
)

// Preview is a cheap estimate of how many movies match a filter set.
// EstimatedTotal is meaningless when Unavailable is set: the sample was too
// small to extrapolate from.
type Preview struct {
	EstimatedTotal int  `json:"estimated_total"`
	LowResults     bool `json:"low_results"`
	Unavailable    bool `json:"unavailable"`
}

const lowResultsFloor = 25

// PreviewEN estimates the global catalog's match count. Permissive rating
// thresholds trust the catalog's native total; strict ones sample a random
// subset of candidates, apply the rating floor to each, and extrapolate the
// pass rate over the full total.
func (e *Engine) PreviewEN(ctx context.Context, f Filters) (Preview, error) {
	f.Lang = movie.NormalizeLang(f.Lang)
	cacheKey := "preview:en:" + f.fingerprint()
	var cached Preview
	if hit, err := e.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	strategy := strategyFor(f.MinRating)
	params := f.discoverParams(strategy)
	first, err := e.tmdb.Get(ctx, "/discover/movie", pageParams(params, f.Lang, 1))
	if err != nil {
		return Preview{}, fmt.Errorf("preview probe: %w", err)
	}
	total := getInt(first, "total_results")
	totalPages := getInt(first, "total_pages")
	if totalPages > maxCatalogPages {
		totalPages = maxCatalogPages
	}
	if total <= 0 {
		return e.storePreview(ctx, cacheKey, Preview{EstimatedTotal: 0, LowResults: true}), nil
	}

	// Near-zero thresholds filter nothing, so the native total is exact.
	if f.MinRating <= 1.05 {
		estimated := total - len(f.ExcludeTMDB)
		if estimated < 0 {
			estimated = 0
		}
		return e.storePreview(ctx, cacheKey, Preview{
			EstimatedTotal: estimated,
			LowResults:     estimated < lowResultsFloor,
		}), nil
	}

	target := sampleTarget(total, f.MinRating)
	probes := previewProbePages(target, f.MinRating)
	plan := buildPagePlan(e.rng, totalPages, probes)
	ids := e.collectPreviewIDs(ctx, f, params, first, plan, target)

	checked, passed := e.countPassing(ctx, f, ids)
	// The usable floor never exceeds the sample itself: tiny result sets
	// extrapolate from whatever resolved.
	minUsable := len(ids) / 3
	if minUsable < 8 {
		minUsable = 8
	}
	if minUsable > len(ids) {
		minUsable = len(ids)
	}
	if checked == 0 || checked < minUsable {
		slog.Warn("preview sample too small",
			"candidates", len(ids),
			"checked", checked,
			"min_usable", minUsable)
		return e.storePreview(ctx, cacheKey, Preview{LowResults: true, Unavailable: true}), nil
	}

	estimated := int(math.Round(float64(total) * float64(passed) / float64(checked)))
	if passed > 0 && estimated < 1 {
		estimated = 1
	}
	return e.storePreview(ctx, cacheKey, Preview{
		EstimatedTotal: estimated,
		LowResults:     estimated < lowResultsFloor,
	}), nil
}

// PreviewRU estimates the regional catalog's match count from its native
// listing total. The regional catalog filters by rating server-side, so no
// sampling is needed.
func (e *Engine) PreviewRU(ctx context.Context, f Filters) (Preview, error) {
	f.Lang = regionalLang
	cacheKey := "preview:ru:" + f.fingerprint()
	var cached Preview
	if hit, err := e.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	params := f.ruListParams()
	if f.MinRating > 0 {
		params.Set("rating.imdb", fmt.Sprintf("%.1f-10", f.MinRating))
	}
	params.Set("page", "1")
	params.Set("limit", "1")
	payload, err := e.kp.Get(ctx, "/v1.4/movie", params)
	if err != nil {
		return Preview{}, fmt.Errorf("preview probe: %w", err)
	}

	total := ruListingTotal(payload)
	estimated := total - len(f.ExcludeKP)
	if estimated < 0 {
		estimated = 0
	}
	return e.storePreview(ctx, cacheKey, Preview{
		EstimatedTotal: estimated,
		LowResults:     estimated < lowResultsFloor,
	}), nil
}

// ruListingTotal reads the regional listing's reported total, tolerating the
// field-name drift seen across API versions.
func ruListingTotal(payload map[string]any) int {
	for _, key := range []string{"total", "totalDocs", "total_docs", "totalCount", "count"} {
		if n := getInt(payload, key); n > 0 {
			return n
		}
	}
	return len(getList(payload, "docs"))
}

// sampleTarget returns how many candidates a preview should examine. Small
// result sets are examined in full; stricter thresholds are noisier and need
// larger samples.
func sampleTarget(total int, minRating float64) int {
	if total <= 120 {
		return total
	}
	switch {
	case minRating >= 8.5:
		return 90
	case minRating >= 7.5:
		return 72
	case minRating >= 6.5:
		return 56
	case minRating >= 5.5:
		return 44
	default:
		return 32
	}
}

// previewProbePages returns how many pages to probe for the sample: enough
// pages to supply the target at 20 entries each, with a rating-scaled floor.
func previewProbePages(target int, minRating float64) int {
	base := 7
	switch {
	case minRating >= 8.5:
		base = 16
	case minRating >= 7.5:
		base = 12
	case minRating >= 6.5:
		base = 9
	}
	needed := (target + 19) / 20
	if needed > base {
		return needed
	}
	return base
}

// collectPreviewIDs gathers candidate IDs across the page plan concurrently,
// then shuffles and truncates to the sample target.
func (e *Engine) collectPreviewIDs(ctx context.Context, f Filters, params url.Values, first map[string]any, plan []int, target int) []int {
	var mu sync.Mutex
	seen := map[int]bool{}
	var ids []int
	collect := func(payload map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		for _, item := range getList(payload, "results") {
			id := getInt(item, "id")
			if id == 0 || seen[id] || containsInt(f.ExcludeTMDB, id) {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	collect(first)
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.concurrency)
	for _, page := range plan {
		if page == 1 {
			continue
		}
		grp.Go(func() error {
			payload, err := e.tmdb.Get(grpCtx, "/discover/movie", pageParams(params, f.Lang, page))
			if err != nil {
				slog.Warn("preview page failed", "page", page, "error", err)
				return nil
			}
			collect(payload)
			return nil
		})
	}
	_ = grp.Wait()

	e.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > target {
		ids = ids[:target]
	}
	return ids
}

// countPassing resolves the sampled candidates under bounded concurrency and
// counts how many clear the rating floor and the exclusion lists. Individual
// resolution failures shrink the checked count instead of failing the
// preview.
func (e *Engine) countPassing(ctx context.Context, f Filters, ids []int) (checked, passed int) {
	var mu sync.Mutex
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.concurrency)
	for _, id := range ids {
		grp.Go(func() error {
			card, err := e.resolver.Resolve(grpCtx, f.Lang, movie.ResolveIDs{TMDBID: id})
			if err != nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			checked++
			if passesRatingFloor(card.IMDBRating, f.MinRating) &&
				!(card.KPID != 0 && containsInt(f.ExcludeKP, card.KPID)) {
				passed++
			}
			return nil
		})
	}
	_ = grp.Wait()
	return checked, passed
}

func (e *Engine) storePreview(ctx context.Context, key string, p Preview) Preview {
	if err := e.cache.SetJSON(ctx, key, p, e.previewTTL); err != nil {
		slog.Warn("preview cache write failed", "error", err)
	}
	return p
}
