package discover

import "math/rand"

// Strategy tunes how aggressively discovery probes the catalog for a given
// minimum-rating target. Stricter targets sort by rating, demand more votes
// and probe deeper; looser targets stay near the popular head and shuffle.
type Strategy struct {
	SortBy               string
	VoteCountFloor       int
	ProbePages           int
	MaxResolveCandidates int
	Shuffle              bool
}

func strategyFor(minRating float64) Strategy {
	switch {
	case minRating >= 8.5:
		return Strategy{SortBy: "vote_average.desc", VoteCountFloor: 250, ProbePages: 18, MaxResolveCandidates: 160}
	case minRating >= 7.5:
		return Strategy{SortBy: "vote_average.desc", VoteCountFloor: 120, ProbePages: 12, MaxResolveCandidates: 120}
	case minRating >= 6.5:
		return Strategy{SortBy: "popularity.desc", VoteCountFloor: 80, ProbePages: 8, MaxResolveCandidates: 90, Shuffle: true}
	default:
		return Strategy{SortBy: "popularity.desc", VoteCountFloor: 50, ProbePages: 5, MaxResolveCandidates: 70, Shuffle: true}
	}
}

// ruAttemptBudget bounds the regional random-endpoint loop. Stricter rating
// targets reject more draws, so they get a larger budget.
func ruAttemptBudget(minRating float64) int {
	switch {
	case minRating >= 8.5:
		return 32
	case minRating >= 7.5:
		return 22
	default:
		return 12
	}
}

const maxCatalogPages = 500

// buildPagePlan returns the pages to probe: page 1 always first, followed by
// a random sample without replacement of the remaining pages. Every entry is
// within [1, totalPages] and appears at most once.
func buildPagePlan(rng *rand.Rand, totalPages, probePages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if totalPages > maxCatalogPages {
		totalPages = maxCatalogPages
	}
	want := probePages
	if want > totalPages {
		want = totalPages
	}
	plan := []int{1}
	if want <= 1 || totalPages == 1 {
		return plan
	}
	rest := make([]int, 0, totalPages-1)
	for page := 2; page <= totalPages; page++ {
		rest = append(rest, page)
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(plan, rest[:want-1]...)
}

// passesRatingFloor applies the external rating threshold. Thresholds at or
// below zero accept everything, including movies with no rating at all; a
// positive threshold rejects unrated movies.
func passesRatingFloor(rating *float64, minRating float64) bool {
	if minRating <= 0 {
		return true
	}
	return rating != nil && *rating >= minRating
}
