// Package discover implements randomized, filter-aware movie discovery over
// the paginated global catalog and the regional catalog's random endpoint,
// plus statistical preview estimation of result-set sizes.
package discover

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/filmspin/filmspin/internal/store"
)

// Filters is one discovery request: every field is optional except the
// language default applied by the engine.
type Filters struct {
	Lang        string
	YearFrom    int
	YearTo      int
	RuntimeFrom int
	RuntimeTo   int
	Genres      string // comma- or pipe-separated genre spec
	MinRating   float64
	Country     string // comma- or pipe-separated country spec
	ExcludeTMDB []int
	ExcludeKP   []int
}

// fingerprint returns a stable hash over the ordered filter tuple. Identical
// combinations share recency history and preview cache entries.
func (f Filters) fingerprint() string {
	return store.FiltersKey(
		f.Lang,
		f.YearFrom, f.YearTo,
		f.RuntimeFrom, f.RuntimeTo,
		f.Genres,
		f.MinRating,
		f.Country,
		intsKey(f.ExcludeTMDB),
		intsKey(f.ExcludeKP),
	)
}

func intsKey(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// yearMidpoint returns the midpoint of the requested year range, or 0 when
// no bounds are set.
func (f Filters) yearMidpoint() int {
	switch {
	case f.YearFrom > 0 && f.YearTo > 0:
		return (f.YearFrom + f.YearTo) / 2
	case f.YearFrom > 0:
		return f.YearFrom
	case f.YearTo > 0:
		return f.YearTo
	default:
		return 0
	}
}

func (f Filters) hasRuntimeBounds() bool {
	return f.RuntimeFrom > 0 || f.RuntimeTo > 0
}

// discoverParams builds the global catalog's listing parameters for this
// filter set under the given strategy.
func (f Filters) discoverParams(strategy Strategy) url.Values {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("sort_by", strategy.SortBy)
	params.Set("vote_count.gte", strconv.Itoa(strategy.VoteCountFloor))
	if f.Genres != "" {
		params.Set("with_genres", f.Genres)
	}
	if f.YearFrom > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", f.YearFrom))
	}
	if f.YearTo > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", f.YearTo))
	}
	if f.RuntimeFrom > 0 {
		params.Set("with_runtime.gte", strconv.Itoa(f.RuntimeFrom))
	}
	if f.RuntimeTo > 0 {
		params.Set("with_runtime.lte", strconv.Itoa(f.RuntimeTo))
	}
	if iso := normalizeISOCountries(f.Country); iso != "" {
		params.Set("with_origin_country", iso)
	}
	return params
}

// ruListParams builds the regional catalog's listing parameters; unlike the
// global catalog it filters natively by rating range and runtime.
func (f Filters) ruListParams() url.Values {
	params := url.Values{}
	params.Set("type", "movie")
	switch {
	case f.YearFrom > 0 && f.YearTo > 0:
		params.Set("year", fmt.Sprintf("%d-%d", f.YearFrom, f.YearTo))
	case f.YearFrom > 0:
		params.Set("year", strconv.Itoa(f.YearFrom))
	case f.YearTo > 0:
		params.Set("year", strconv.Itoa(f.YearTo))
	}
	switch {
	case f.RuntimeFrom > 0 && f.RuntimeTo > 0:
		params.Set("movieLength", fmt.Sprintf("%d-%d", f.RuntimeFrom, f.RuntimeTo))
	case f.RuntimeFrom > 0:
		params.Set("movieLength", strconv.Itoa(f.RuntimeFrom))
	case f.RuntimeTo > 0:
		params.Set("movieLength", strconv.Itoa(f.RuntimeTo))
	}
	if f.Genres != "" {
		for _, genre := range splitSpec(f.Genres) {
			params.Add("genres.name", genre)
		}
	}
	if f.Country != "" {
		for _, country := range splitSpec(f.Country) {
			params.Add("countries.name", country)
		}
	}
	return params
}

var specSeparators = regexp.MustCompile(`[|,]`)

func splitSpec(raw string) []string {
	var parts []string
	for _, part := range specSeparators.Split(raw, -1) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// normalizeISOCountries keeps only two-letter ISO codes, uppercased, order
// preserved, duplicates removed.
func normalizeISOCountries(raw string) string {
	var unique []string
	seen := map[string]bool{}
	for _, part := range splitSpec(raw) {
		code := strings.ToUpper(part)
		if len(code) != 2 || !isAlpha(code) || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	return strings.Join(unique, ",")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
