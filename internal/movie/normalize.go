package movie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/filmspin/filmspin/internal/omdb"
)

const (
	tmdbPosterBase   = "https://image.tmdb.org/t/p/w500"
	tmdbBackdropBase = "https://image.tmdb.org/t/p/w780"
)

// normalizeTMDB projects a TMDB detail payload (with external_ids, credits
// and watch/providers appended) into the canonical card.
func normalizeTMDB(details map[string]any, rating *omdb.Rating, lang string) *Card {
	imdbID := getString(getMap(details, "external_ids"), "imdb_id")

	var countries []string
	for _, raw := range getList(details, "production_countries") {
		country, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := getString(country, "name")
		if name == "" {
			name = getString(country, "iso_3166_1")
		}
		if name != "" {
			countries = append(countries, name)
		}
	}
	if len(countries) == 0 {
		for _, raw := range getList(details, "origin_country") {
			if code, ok := raw.(string); ok && code != "" {
				countries = append(countries, code)
			}
		}
	}

	var genres []string
	for _, raw := range getList(details, "genres") {
		genre, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if name := getString(genre, "name"); name != "" {
			genres = append(genres, name)
		}
	}

	card := &Card{
		Title:     getString(details, "title"),
		Year:      releaseYear(getString(details, "release_date")),
		Overview:  getString(details, "overview"),
		Genres:    genres,
		Countries: countries,
		Directors: extractTMDBDirectors(details),
		Cast:      extractTMDBCast(details),
		TMDBID:    getInt(details, "id"),
		TMDBVote:  floatPtr(details, "vote_average"),
	}
	card.RuntimeMinutes = getInt(details, "runtime")
	if path := getString(details, "poster_path"); path != "" {
		card.Poster = tmdbPosterBase + path
	}
	if path := getString(details, "backdrop_path"); path != "" {
		card.Backdrop = tmdbBackdropBase + path
	}
	if card.TMDBID > 0 {
		card.TMDBURL = fmt.Sprintf("https://www.themoviedb.org/movie/%d", card.TMDBID)
	}
	if imdbID != "" {
		card.IMDBID = imdbID
		card.IMDBURL = fmt.Sprintf("https://www.imdb.com/title/%s/", imdbID)
	}
	if rating != nil {
		card.IMDBRating = rating.Rating
		card.IMDBVotes = rating.Votes
	}
	card.WatchProviders, card.WatchURL = extractWatchProviders(details, lang)
	return card
}

// normalizeKP projects a Poiskkino detail payload into the canonical card.
func normalizeKP(payload map[string]any) *Card {
	external := getMap(payload, "externalId")
	rating := getMap(payload, "rating")
	votes := getMap(payload, "votes")
	imdbID := getString(external, "imdb")
	kpID := getInt(payload, "id")

	title := getString(payload, "name")
	if title == "" {
		title = getString(payload, "alternativeName")
	}
	if title == "" {
		title = getString(payload, "enName")
	}

	overview := getString(payload, "description")
	if overview == "" {
		overview = getString(payload, "shortDescription")
	}

	var genres []string
	for _, raw := range getList(payload, "genres") {
		if genre, ok := raw.(map[string]any); ok {
			if name := getString(genre, "name"); name != "" {
				genres = append(genres, name)
			}
		}
	}

	var countries []string
	for _, raw := range getList(payload, "countries") {
		if country, ok := raw.(map[string]any); ok {
			if name := getString(country, "name"); name != "" {
				countries = append(countries, name)
			}
		}
	}

	card := &Card{
		Title:          title,
		Year:           getInt(payload, "year"),
		RuntimeMinutes: getInt(payload, "movieLength"),
		Overview:       overview,
		Genres:         genres,
		Countries:      countries,
		Directors:      extractKPPeople(payload, kpRoleDirector),
		Cast:           extractKPPeople(payload, kpRoleActor),
		TMDBID:         getInt(external, "tmdb"),
		KPID:           kpID,
		KPRating:       floatPtr(rating, "kp"),
		KPVotes:        intPtr(votes, "kp"),
		IMDBRating:     floatPtr(rating, "imdb"),
		IMDBVotes:      intPtr(votes, "imdb"),
	}
	if poster := getMap(payload, "poster"); poster != nil {
		card.Poster = getString(poster, "url")
	}
	if backdrop := getMap(payload, "backdrop"); backdrop != nil {
		card.Backdrop = getString(backdrop, "url")
	}
	if imdbID != "" {
		card.IMDBID = imdbID
		card.IMDBURL = fmt.Sprintf("https://www.imdb.com/title/%s/", imdbID)
	}
	if kpID > 0 {
		card.KPURL = fmt.Sprintf("https://www.kinopoisk.ru/film/%d/", kpID)
	}
	return card
}

// extractWatchProviders reads the streaming providers for the language's
// region (US fallback) from an appended watch/providers block.
func extractWatchProviders(details map[string]any, lang string) ([]string, string) {
	results := getMap(getMap(details, "watch/providers"), "results")
	if results == nil {
		return nil, ""
	}

	region := getMap(results, regionFromLang(lang))
	if region == nil {
		region = getMap(results, "US")
	}
	if region == nil {
		return nil, ""
	}

	var names []string
	for _, raw := range getList(region, "flatrate") {
		provider, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		names = appendUnique(names, getString(provider, "provider_name"), 8)
	}
	return names, getString(region, "link")
}

func regionFromLang(lang string) string {
	if idx := strings.IndexByte(lang, '-'); idx >= 0 && len(lang) >= idx+3 {
		return strings.ToUpper(lang[idx+1 : idx+3])
	}
	return "US"
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
