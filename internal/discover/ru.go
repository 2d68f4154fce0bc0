package discover

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	apperrors "github.com/filmspin/filmspin/internal/errors"
	"github.com/filmspin/filmspin/internal/movie"
)

const regionalLang = "ru-RU"

// PickRandomRU draws from the regional catalog's random endpoint under a
// bounded attempt budget, skipping recently served and already drawn IDs.
func (e *Engine) PickRandomRU(ctx context.Context, f Filters) (*movie.Card, error) {
	f.Lang = regionalLang
	params := f.ruListParams()
	if f.MinRating > 0 {
		params.Set("rating.imdb", fmt.Sprintf("%.1f-10", f.MinRating))
	}
	recentKey := "recent:kp:" + f.fingerprint()

	recent, err := e.recent.Members(ctx, recentKey)
	if err != nil {
		slog.Warn("recency lookup failed", "error", err)
		recent = map[string]struct{}{}
	}
	if recent == nil {
		recent = map[string]struct{}{}
	}

	drawn := map[int]bool{}
	budget := ruAttemptBudget(f.MinRating)
	for attempt := 0; attempt < budget; attempt++ {
		payload, err := e.kp.Get(ctx, "/v1.4/movie/random", params)
		if err != nil {
			return nil, fmt.Errorf("random draw: %w", err)
		}
		kpID := getInt(payload, "id")
		if kpID == 0 || drawn[kpID] || containsInt(f.ExcludeKP, kpID) {
			continue
		}
		drawn[kpID] = true
		if _, ok := recent[strconv.Itoa(kpID)]; ok {
			continue
		}

		card, err := e.resolver.Resolve(ctx, regionalLang, movie.ResolveIDs{KPID: kpID})
		if err != nil {
			return nil, err
		}
		if !passesRatingFloor(card.IMDBRating, f.MinRating) {
			continue
		}
		if card.TMDBID != 0 && containsInt(f.ExcludeTMDB, card.TMDBID) {
			continue
		}
		if err := e.recent.Add(ctx, recentKey, strconv.Itoa(kpID), e.recentTTL, e.recentLimit); err != nil {
			slog.Warn("recency update failed", "error", err)
		}
		card.RecommendationReason = buildReason(card, f)
		return card, nil
	}

	slog.Info("random draw budget exhausted",
		"min_rating", f.MinRating,
		"budget", budget,
		"drawn", len(drawn))
	if f.MinRating > 0 {
		return nil, apperrors.NewNoResultsError(ratingFloorMessage)
	}
	return nil, apperrors.NewNoResultsError(noResultsMessage)
}
