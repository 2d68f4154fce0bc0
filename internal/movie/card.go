// Package movie resolves heterogeneous catalog records into one canonical
// movie card.
package movie

// Caps for people lists on the canonical card.
const (
	MaxDirectors = 3
	MaxCast      = 5
)

// Card is the unified, source-agnostic movie shape returned to callers.
// Pointer fields distinguish "absent upstream" from a genuine zero.
type Card struct {
	Title                string   `json:"title"`
	Year                 int      `json:"year,omitempty"`
	RuntimeMinutes       int      `json:"runtime_minutes,omitempty"`
	Overview             string   `json:"overview"`
	Genres               []string `json:"genres"`
	Countries            []string `json:"countries"`
	Directors            []string `json:"directors"`
	Cast                 []string `json:"cast"`
	RecommendationReason string   `json:"recommendation_reason,omitempty"`
	WatchProviders       []string `json:"watch_providers"`
	WatchURL             string   `json:"watch_url,omitempty"`
	Poster               string   `json:"poster,omitempty"`
	Backdrop             string   `json:"backdrop,omitempty"`

	TMDBID   int      `json:"tmdb_id,omitempty"`
	TMDBVote *float64 `json:"tmdb_vote,omitempty"`
	TMDBURL  string   `json:"tmdb_url,omitempty"`

	IMDBID     string   `json:"imdb_id,omitempty"`
	IMDBURL    string   `json:"imdb_url,omitempty"`
	IMDBRating *float64 `json:"imdb_rating,omitempty"`
	IMDBVotes  *int     `json:"imdb_votes,omitempty"`

	KPID     int      `json:"kp_id,omitempty"`
	KPRating *float64 `json:"kp_rating,omitempty"`
	KPVotes  *int     `json:"kp_votes,omitempty"`
	KPURL    string   `json:"kp_url,omitempty"`
}
