package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/filmspin/filmspin/internal/config"
	"github.com/filmspin/filmspin/internal/discover"
	apperrors "github.com/filmspin/filmspin/internal/errors"
	"github.com/filmspin/filmspin/internal/fetch"
	"github.com/filmspin/filmspin/internal/genres"
	"github.com/filmspin/filmspin/internal/movie"
	"github.com/filmspin/filmspin/internal/omdb"
	"github.com/filmspin/filmspin/internal/poiskkino"
	"github.com/filmspin/filmspin/internal/store"
	"github.com/filmspin/filmspin/internal/tmdb"
)

// CLI is the complete command structure for the filmspin application.
type CLI struct {
	// Global flags
	Verbose  bool   `help:"Enable debug logging"`
	RedisURL string `help:"Redis connection URL" default:""`

	Resolve ResolveCmd `cmd:"" help:"Resolve one movie into a unified card by any known ID"`
	Random  RandomCmd  `cmd:"" help:"Pick one random movie matching the filters"`
	Preview PreviewCmd `cmd:"" help:"Estimate how many movies match the filters"`
	Genres  GenresCmd  `cmd:"" help:"List selectable genres"`
}

// filterFlags are the discovery filters shared by random and preview.
type filterFlags struct {
	Lang        string  `help:"Response language tag" default:"en-US"`
	YearFrom    int     `help:"Earliest release year"`
	YearTo      int     `help:"Latest release year"`
	RuntimeFrom int     `help:"Minimum runtime in minutes"`
	RuntimeTo   int     `help:"Maximum runtime in minutes"`
	Genres      string  `help:"Genre spec, comma or pipe separated"`
	MinRating   float64 `help:"Minimum external rating, 0 disables the floor"`
	Country     string  `help:"Country spec, comma or pipe separated"`
	ExcludeTMDB []int   `name:"exclude-tmdb" help:"Global catalog IDs to exclude"`
	ExcludeKP   []int   `name:"exclude-kp" help:"Regional catalog IDs to exclude"`
}

func (f filterFlags) toFilters() discover.Filters {
	return discover.Filters{
		Lang:        f.Lang,
		YearFrom:    f.YearFrom,
		YearTo:      f.YearTo,
		RuntimeFrom: f.RuntimeFrom,
		RuntimeTo:   f.RuntimeTo,
		Genres:      f.Genres,
		MinRating:   f.MinRating,
		Country:     f.Country,
		ExcludeTMDB: f.ExcludeTMDB,
		ExcludeKP:   f.ExcludeKP,
	}
}

// ResolveCmd resolves one movie by whichever ID the caller has.
type ResolveCmd struct {
	TMDBID int    `name:"tmdb-id" help:"Global catalog movie ID"`
	KPID   int    `name:"kp-id" help:"Regional catalog movie ID"`
	IMDBID string `name:"imdb-id" help:"IMDb ID (tt-prefixed)"`
	Lang   string `help:"Response language tag" default:"en-US"`
}

// RandomCmd picks one random movie.
type RandomCmd struct {
	filterFlags
	RU bool `help:"Draw from the regional catalog instead of the global one"`
}

// PreviewCmd estimates result-set size for a filter combination.
type PreviewCmd struct {
	filterFlags
	RU bool `help:"Estimate against the regional catalog"`
}

// GenresCmd lists selectable genres.
type GenresCmd struct {
	Lang string `help:"Response language tag" default:"en-US"`
	RU   bool   `help:"List the regional catalog's genres"`
}

// Execute runs the Kong-based CLI.
func Execute() {
	initLogging(false)
	initConfig()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("filmspin"),
		kong.Description("Cross-source movie resolution and randomized discovery."),
		kong.UsageOnError(),
	)

	if cli.Verbose {
		initLogging(true)
	}
	if cli.RedisURL != "" {
		viper.Set("redis.url", cli.RedisURL)
	}

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"TMDBAPIKey":      "TMDB_API_KEY",
		"OMDBAPIKey":      "OMDB_API_KEY",
		"PoiskkinoAPIKey": "POISKKINO_API_KEY",
		"redis.url":       "REDIS_URL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults and environment")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// app wires the shared infrastructure once per invocation.
type app struct {
	resolver *movie.Resolver
	engine   *discover.Engine
	genres   *genres.Service
	close    func()
}

func buildApp() (*app, error) {
	redisOpts, err := redis.ParseURL(viper.GetString("redis.url"))
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)

	httpClient := &http.Client{
		Timeout: viper.GetDuration("http.read_timeout"),
	}
	fetcher := fetch.NewClient(fetch.WithHTTPClient(httpClient))

	tmdbClient := tmdb.NewClient(config.TMDBAPIKey,
		tmdb.WithFetcher(fetcher),
		tmdb.WithBaseURL(viper.GetString("tmdb.base")))
	kpClient := poiskkino.NewClient(config.PoiskkinoAPIKey,
		poiskkino.WithFetcher(fetcher),
		poiskkino.WithBaseURL(viper.GetString("poiskkino.base")))
	// Credential rotation reacts to auth and quota statuses directly, so the
	// ratings fetcher must not retry them first.
	omdbClient := omdb.NewClient(config.OMDBAPIKeys,
		omdb.WithFetcher(fetch.NewClient(fetch.WithHTTPClient(httpClient), fetch.WithRetries(0))),
		omdb.WithBaseURL(viper.GetString("omdb.base")),
		omdb.WithMock(config.OMDBMockEnabled))

	cache := store.NewCache(rdb)
	mappings := store.NewMappingWithTTL(rdb, config.TTL("mapping", store.DefaultMappingTTL))
	recent := store.NewRecent(rdb)

	resolver := movie.NewResolver(cache, mappings, tmdbClient, kpClient, omdbClient,
		movie.WithDetailTTL(config.TTL("movie_detail", 24*time.Hour)),
		movie.WithNegativeTTL(config.TTL("negative_rating", time.Hour)))
	engine := discover.NewEngine(cache, recent, tmdbClient, kpClient, resolver,
		discover.WithRecentPolicy(config.TTL("recent", 12*time.Hour), config.RecentLimit()),
		discover.WithPreviewTTL(config.TTL("preview", 15*time.Minute)))
	genreService := genres.NewService(cache, tmdbClient, kpClient,
		genres.WithTTL(config.TTL("genres", 30*24*time.Hour)))

	return &app{
		resolver: resolver,
		engine:   engine,
		genres:   genreService,
		close:    func() { _ = rdb.Close() },
	}, nil
}

func requireRU() error {
	if !config.RUEnabled {
		return apperrors.NewInputError("regional catalog support is disabled")
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run methods for each command

func (r *ResolveCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	card, err := a.resolver.Resolve(context.Background(), r.Lang, movie.ResolveIDs{
		TMDBID: r.TMDBID,
		KPID:   r.KPID,
		IMDBID: r.IMDBID,
	})
	if err != nil {
		return err
	}
	return printJSON(card)
}

func (r *RandomCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	var card *movie.Card
	if r.RU {
		if err := requireRU(); err != nil {
			return err
		}
		card, err = a.engine.PickRandomRU(ctx, r.toFilters())
	} else {
		card, err = a.engine.PickRandom(ctx, r.toFilters())
	}
	if err != nil {
		return err
	}
	return printJSON(card)
}

func (p *PreviewCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	var preview discover.Preview
	if p.RU {
		if err := requireRU(); err != nil {
			return err
		}
		preview, err = a.engine.PreviewRU(ctx, p.toFilters())
	} else {
		preview, err = a.engine.PreviewEN(ctx, p.toFilters())
	}
	if err != nil {
		return err
	}
	return printJSON(preview)
}

func (g *GenresCmd) Run() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	var items []genres.Genre
	if g.RU {
		if err := requireRU(); err != nil {
			return err
		}
		items, err = a.genres.Regional(ctx)
	} else {
		items, err = a.genres.Global(ctx, g.Lang)
	}
	if err != nil {
		return err
	}
	return printJSON(items)
}
