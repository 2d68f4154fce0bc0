// Package config holds process-wide settings loaded through viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// TMDBAPIKey is the API key for TheMovieDB
	TMDBAPIKey string
	// OMDBAPIKeys is the ordered list of OMDB credentials used for rotation
	OMDBAPIKeys []string
	// PoiskkinoAPIKey is the API key for the Poiskkino catalog
	PoiskkinoAPIKey string
	// OMDBMockEnabled bypasses OMDB network calls with deterministic ratings
	OMDBMockEnabled bool
	// RUEnabled controls whether the regional catalog endpoints are served
	RUEnabled bool
)

// Default upstream base URLs.
const (
	DefaultTMDBBase      = "https://api.themoviedb.org/3"
	DefaultOMDBBase      = "http://www.omdbapi.com/"
	DefaultPoiskkinoBase = "https://api.poiskkino.dev"
	DefaultRedisURL      = "redis://localhost:6379/0"
)

// SetDefaults registers viper defaults for every setting the engine reads.
func SetDefaults() {
	viper.SetDefault("tmdb.base", DefaultTMDBBase)
	viper.SetDefault("omdb.base", DefaultOMDBBase)
	viper.SetDefault("omdb.mock", false)
	viper.SetDefault("poiskkino.base", DefaultPoiskkinoBase)
	viper.SetDefault("redis.url", DefaultRedisURL)
	viper.SetDefault("ru.enabled", true)

	viper.SetDefault("http.connect_timeout", "5s")
	viper.SetDefault("http.read_timeout", "15s")

	viper.SetDefault("ttl.genres", "720h")
	viper.SetDefault("ttl.movie_detail", "24h")
	viper.SetDefault("ttl.recent", "12h")
	viper.SetDefault("ttl.preview", "15m")
	viper.SetDefault("ttl.negative_rating", "1h")
	viper.SetDefault("ttl.mapping", "720h")
	viper.SetDefault("recent.limit", 100)
}

// InitConfig initializes the global configuration from viper state.
func InitConfig() {
	TMDBAPIKey = viper.GetString("TMDBAPIKey")
	OMDBAPIKeys = splitKeys(viper.GetString("OMDBAPIKey"))
	PoiskkinoAPIKey = viper.GetString("PoiskkinoAPIKey")
	OMDBMockEnabled = viper.GetBool("omdb.mock")
	RUEnabled = viper.GetBool("ru.enabled")
}

// TTL returns the configured duration for the given ttl.* key, falling back
// to the provided default when the value is missing or unparsable.
func TTL(name string, fallback time.Duration) time.Duration {
	raw := viper.GetString("ttl." + name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// RecentLimit returns the recency set size cap.
func RecentLimit() int {
	limit := viper.GetInt("recent.limit")
	if limit <= 0 {
		return 100
	}
	return limit
}

func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
