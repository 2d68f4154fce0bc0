package movie

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/filmspin/filmspin/internal/errors"
	"github.com/filmspin/filmspin/internal/omdb"
	"github.com/filmspin/filmspin/internal/store"
)

// schemaVersion tags normalized-record cache keys so older cached shapes are
// ignored after a card layout change.
const schemaVersion = "v2"

// regionalLang is the canonical language tag for the regional catalog path.
const regionalLang = "ru-RU"

const (
	defaultDetailTTL   = 24 * time.Hour
	defaultNegativeTTL = time.Hour
)

// CatalogClient is the read contract of both catalog API wrappers.
type CatalogClient interface {
	Get(ctx context.Context, path string, params url.Values) (map[string]any, error)
}

// RatingsClient fetches the IMDb rating/vote pair by textual ID.
type RatingsClient interface {
	Rating(ctx context.Context, imdbID string) (*omdb.Rating, error)
}

// ResolveIDs carries whichever source IDs the caller already knows.
// Zero/empty fields are treated as unknown.
type ResolveIDs struct {
	TMDBID int
	KPID   int
	IMDBID string
}

// Resolver assembles canonical movie cards from the three upstream sources,
// using the mapping store and caches to minimize upstream calls.
type Resolver struct {
	cache       *store.Cache
	mappings    *store.Mapping
	tmdb        CatalogClient
	kp          CatalogClient
	ratings     RatingsClient
	detailTTL   time.Duration
	negativeTTL time.Duration
}

// NewResolver creates a resolver over the given stores and clients.
func NewResolver(cache *store.Cache, mappings *store.Mapping, tmdbClient, kpClient CatalogClient, ratings RatingsClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:       cache,
		mappings:    mappings,
		tmdb:        tmdbClient,
		kp:          kpClient,
		ratings:     ratings,
		detailTTL:   defaultDetailTTL,
		negativeTTL: defaultNegativeTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithDetailTTL sets the TTL for raw and normalized movie records.
func WithDetailTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.detailTTL = ttl
		}
	}
}

// WithNegativeTTL sets the TTL for cached "no rating" results.
func WithNegativeTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.negativeTTL = ttl
		}
	}
}

// Resolve produces one canonical movie card from any combination of known
// source IDs. At least one of TMDB/KP must be resolvable or an input error
// is returned.
func (r *Resolver) Resolve(ctx context.Context, lang string, ids ResolveIDs) (*Card, error) {
	tmdbID, kpID, imdbID := ids.TMDBID, ids.KPID, ids.IMDBID
	lang = NormalizeLang(lang)

	if tmdbID == 0 && kpID > 0 {
		if refs, err := r.mappings.ByKP(ctx, kpID); err == nil {
			tmdbID = refs.TMDBID
			if imdbID == "" {
				imdbID = refs.IMDBID
			}
		}
		if tmdbID == 0 {
			kpRaw, err := r.kpDetails(ctx, kpID)
			if err != nil {
				return nil, err
			}
			external := getMap(kpRaw, "externalId")
			tmdbID = getInt(external, "tmdb")
			if imdbID == "" {
				imdbID = getString(external, "imdb")
			}
			r.putMapping(ctx, tmdbID, kpID, imdbID)
		}
	}

	if tmdbID > 0 {
		var cached Card
		if hit, err := r.cache.GetJSON(ctx, normKey(tmdbID, lang), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	if lang == regionalLang {
		return r.resolveRegional(ctx, tmdbID, kpID, imdbID)
	}
	return r.resolveGlobal(ctx, lang, tmdbID, kpID, imdbID)
}

// resolveRegional prefers the regional catalog's own record when a KP ID is
// resolvable, falling back to TMDB in Russian otherwise.
func (r *Resolver) resolveRegional(ctx context.Context, tmdbID, kpID int, imdbID string) (*Card, error) {
	if kpID == 0 {
		if tmdbID > 0 {
			if refs, err := r.mappings.ByTMDB(ctx, tmdbID); err == nil {
				kpID = refs.KPID
				if imdbID == "" {
					imdbID = refs.IMDBID
				}
			}
		}
		if kpID == 0 {
			kpID = r.kpLookupByExternal(ctx, tmdbID, imdbID)
		}
	}

	var card *Card
	if kpID > 0 {
		kpRaw, err := r.kpDetails(ctx, kpID)
		if err != nil {
			return nil, err
		}
		external := getMap(kpRaw, "externalId")
		if tmdbID == 0 {
			tmdbID = getInt(external, "tmdb")
		}
		if imdbID == "" {
			imdbID = getString(external, "imdb")
		}
		r.putMapping(ctx, tmdbID, kpID, imdbID)
		card = normalizeKP(kpRaw)
		r.enrichRating(ctx, card)
	} else {
		if tmdbID == 0 {
			return nil, apperrors.NewInputError("cannot resolve movie: missing both tmdb_id and kp_id")
		}
		tmdbRaw, err := r.tmdbDetails(ctx, tmdbID, regionalLang)
		if err != nil {
			return nil, err
		}
		if imdbID == "" {
			imdbID = getString(getMap(tmdbRaw, "external_ids"), "imdb_id")
		}
		r.putMapping(ctx, tmdbID, 0, imdbID)
		rating := r.ratingFor(ctx, imdbID)
		card = normalizeTMDB(tmdbRaw, rating, regionalLang)
	}

	if tmdbID > 0 {
		r.writeNorm(ctx, tmdbID, regionalLang, card)
	}
	return card, nil
}

// resolveGlobal always uses the global catalog's record in the requested
// language.
func (r *Resolver) resolveGlobal(ctx context.Context, lang string, tmdbID, kpID int, imdbID string) (*Card, error) {
	if tmdbID == 0 {
		return nil, apperrors.NewInputError("cannot resolve movie: missing tmdb_id/kp_id")
	}

	tmdbRaw, err := r.tmdbDetails(ctx, tmdbID, lang)
	if err != nil {
		return nil, err
	}
	if imdbID == "" {
		imdbID = getString(getMap(tmdbRaw, "external_ids"), "imdb_id")
	}
	r.putMapping(ctx, tmdbID, kpID, imdbID)

	rating := r.ratingFor(ctx, imdbID)
	card := normalizeTMDB(tmdbRaw, rating, lang)
	r.writeNorm(ctx, tmdbID, lang, card)
	return card, nil
}

// tmdbDetails fetches a TMDB detail record, caching the raw payload
// independently of the normalized one.
func (r *Resolver) tmdbDetails(ctx context.Context, tmdbID int, lang string) (map[string]any, error) {
	key := fmt.Sprintf("raw:tmdb:%d:%s", tmdbID, lang)
	var cached map[string]any
	if hit, err := r.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	params := url.Values{}
	params.Set("append_to_response", "external_ids,credits,watch/providers")
	params.Set("language", lang)
	details, err := r.tmdb.Get(ctx, fmt.Sprintf("/movie/%d", tmdbID), params)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, key, details, r.detailTTL); err != nil {
		slog.Warn("failed to cache tmdb detail", "tmdb_id", tmdbID, "error", err)
	}
	return details, nil
}

// kpDetails fetches a Poiskkino detail record with raw-payload caching.
func (r *Resolver) kpDetails(ctx context.Context, kpID int) (map[string]any, error) {
	key := fmt.Sprintf("raw:kp:%d", kpID)
	var cached map[string]any
	if hit, err := r.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	payload, err := r.kp.Get(ctx, fmt.Sprintf("/v1.4/movie/%d", kpID), nil)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, key, payload, r.detailTTL); err != nil {
		slog.Warn("failed to cache kp detail", "kp_id", kpID, "error", err)
	}
	return payload, nil
}

// kpLookupByExternal reverse-searches the regional catalog by TMDB or IMDb
// ID. Returns 0 when nothing matches; lookup failures are soft.
func (r *Resolver) kpLookupByExternal(ctx context.Context, tmdbID int, imdbID string) int {
	if tmdbID == 0 && imdbID == "" {
		return 0
	}
	params := url.Values{}
	params.Set("limit", "1")
	if tmdbID > 0 {
		params.Set("externalId.tmdb", fmt.Sprintf("%d", tmdbID))
	}
	if imdbID != "" {
		params.Set("externalId.imdb", imdbID)
	}

	payload, err := r.kp.Get(ctx, "/v1.4/movie", params)
	if err != nil {
		slog.Debug("kp reverse lookup failed", "tmdb_id", tmdbID, "error", err)
		return 0
	}
	docs := getList(payload, "docs")
	if len(docs) == 0 {
		return 0
	}
	doc, ok := docs[0].(map[string]any)
	if !ok {
		return 0
	}
	return getInt(doc, "id")
}

// ratingFor looks up an IMDb rating through the cache layer. A cached null
// is a negative entry: "looked up recently, nothing there".
func (r *Resolver) ratingFor(ctx context.Context, imdbID string) *omdb.Rating {
	if imdbID == "" {
		return nil
	}
	key := "omdb:" + imdbID
	var cached *omdb.Rating
	if hit, err := r.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached
	}

	rating, err := r.ratings.Rating(ctx, imdbID)
	if err != nil {
		slog.Warn("ratings lookup failed", "imdb_id", imdbID, "error", err)
		return nil
	}

	ttl := r.detailTTL
	if rating == nil {
		ttl = r.negativeTTL
	}
	if err := r.cache.SetJSON(ctx, key, rating, ttl); err != nil {
		slog.Warn("failed to cache rating", "imdb_id", imdbID, "error", err)
	}
	return rating
}

// enrichRating fills the IMDb rating on a regional card when the catalog
// payload carried none.
func (r *Resolver) enrichRating(ctx context.Context, card *Card) {
	if card.IMDBRating != nil || card.IMDBID == "" {
		return
	}
	if rating := r.ratingFor(ctx, card.IMDBID); rating != nil {
		card.IMDBRating = rating.Rating
		card.IMDBVotes = rating.Votes
	}
}

func (r *Resolver) putMapping(ctx context.Context, tmdbID, kpID int, imdbID string) {
	if err := r.mappings.Put(ctx, tmdbID, kpID, imdbID); err != nil {
		slog.Warn("failed to persist id mapping", "tmdb_id", tmdbID, "kp_id", kpID, "error", err)
	}
}

func (r *Resolver) writeNorm(ctx context.Context, tmdbID int, lang string, card *Card) {
	if err := r.cache.SetJSON(ctx, normKey(tmdbID, lang), card, r.detailTTL); err != nil {
		slog.Warn("failed to cache normalized card", "tmdb_id", tmdbID, "error", err)
	}
}

func normKey(tmdbID int, lang string) string {
	return fmt.Sprintf("norm:movie:%s:%d:%s", schemaVersion, tmdbID, lang)
}

// NormalizeLang maps any regional-family language tag onto the canonical
// regional tag so cache keys stay consistent.
func NormalizeLang(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "ru") {
		return regionalLang
	}
	if lang == "" {
		return "en-US"
	}
	return lang
}
