package movie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmspin/filmspin/internal/omdb"
)

func TestNormalizeTMDB(t *testing.T) {
	details := map[string]any{
		"id":            float64(550),
		"title":         "Fight Club",
		"release_date":  "1999-10-15",
		"runtime":       float64(139),
		"overview":      "An insomniac office worker...",
		"vote_average":  8.4,
		"poster_path":   "/poster.jpg",
		"backdrop_path": "/backdrop.jpg",
		"genres": []any{
			map[string]any{"id": float64(18), "name": "Drama"},
		},
		"production_countries": []any{
			map[string]any{"iso_3166_1": "US", "name": "United States of America"},
		},
		"external_ids": map[string]any{"imdb_id": "tt0137523"},
		"watch/providers": map[string]any{
			"results": map[string]any{
				"US": map[string]any{
					"link": "https://www.themoviedb.org/movie/550/watch",
					"flatrate": []any{
						map[string]any{"provider_name": "Hulu"},
						map[string]any{"provider_name": "Hulu"},
					},
				},
			},
		},
	}

	value := 8.8
	votes := 2000000
	card := normalizeTMDB(details, &omdb.Rating{Rating: &value, Votes: &votes}, "en-US")

	assert.Equal(t, "Fight Club", card.Title)
	assert.Equal(t, 1999, card.Year)
	assert.Equal(t, 139, card.RuntimeMinutes)
	assert.Equal(t, []string{"Drama"}, card.Genres)
	assert.Equal(t, []string{"United States of America"}, card.Countries)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", card.Poster)
	assert.Equal(t, "https://image.tmdb.org/t/p/w780/backdrop.jpg", card.Backdrop)
	assert.Equal(t, 550, card.TMDBID)
	require.NotNil(t, card.TMDBVote)
	assert.Equal(t, 8.4, *card.TMDBVote)
	assert.Equal(t, "https://www.themoviedb.org/movie/550", card.TMDBURL)
	assert.Equal(t, "tt0137523", card.IMDBID)
	assert.Equal(t, "https://www.imdb.com/title/tt0137523/", card.IMDBURL)
	require.NotNil(t, card.IMDBRating)
	assert.Equal(t, 8.8, *card.IMDBRating)
	assert.Equal(t, []string{"Hulu"}, card.WatchProviders)
	assert.Equal(t, "https://www.themoviedb.org/movie/550/watch", card.WatchURL)
}

func TestNormalizeTMDBFallsBackToOriginCountry(t *testing.T) {
	details := map[string]any{
		"id":             float64(1),
		"title":          "Unknown",
		"origin_country": []any{"FI"},
	}

	card := normalizeTMDB(details, nil, "en-US")
	assert.Equal(t, []string{"FI"}, card.Countries)
	assert.Nil(t, card.IMDBRating)
	assert.Zero(t, card.Year)
}

func TestNormalizeKP(t *testing.T) {
	payload := map[string]any{
		"id":          float64(462682),
		"name":        "Брат",
		"year":        float64(1997),
		"movieLength": float64(100),
		"description": "Демобилизованный...",
		"genres": []any{
			map[string]any{"name": "драма"},
			map[string]any{"name": "криминал"},
		},
		"countries": []any{
			map[string]any{"name": "Россия"},
		},
		"rating":     map[string]any{"kp": 8.3, "imdb": 7.8},
		"votes":      map[string]any{"kp": float64(500000), "imdb": float64(40000)},
		"poster":     map[string]any{"url": "https://kp.example/poster.jpg"},
		"externalId": map[string]any{"tmdb": float64(65448), "imdb": "tt0118767"},
	}

	card := normalizeKP(payload)

	assert.Equal(t, "Брат", card.Title)
	assert.Equal(t, 1997, card.Year)
	assert.Equal(t, 100, card.RuntimeMinutes)
	assert.Equal(t, []string{"драма", "криминал"}, card.Genres)
	assert.Equal(t, []string{"Россия"}, card.Countries)
	assert.Equal(t, 462682, card.KPID)
	assert.Equal(t, 65448, card.TMDBID)
	assert.Equal(t, "tt0118767", card.IMDBID)
	require.NotNil(t, card.KPRating)
	assert.Equal(t, 8.3, *card.KPRating)
	require.NotNil(t, card.IMDBRating)
	assert.Equal(t, 7.8, *card.IMDBRating)
	require.NotNil(t, card.IMDBVotes)
	assert.Equal(t, 40000, *card.IMDBVotes)
	assert.Equal(t, "https://www.kinopoisk.ru/film/462682/", card.KPURL)
}

func TestNormalizeKPTitleFallbacks(t *testing.T) {
	card := normalizeKP(map[string]any{"alternativeName": "Brother"})
	assert.Equal(t, "Brother", card.Title)

	card = normalizeKP(map[string]any{"enName": "Brother"})
	assert.Equal(t, "Brother", card.Title)
}

func TestRegionFromLang(t *testing.T) {
	assert.Equal(t, "US", regionFromLang("en-US"))
	assert.Equal(t, "RU", regionFromLang("ru-RU"))
	assert.Equal(t, "US", regionFromLang("en"))
}
