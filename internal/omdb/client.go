// Package omdb provides an IMDb ratings client for the OMDB API with
// multi-credential rotation.
package omdb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	apperrors "github.com/filmspin/filmspin/internal/errors"
	"github.com/filmspin/filmspin/internal/fetch"
)

const defaultBaseURL = "http://www.omdbapi.com/"

// Rating holds the parsed rating/vote pair for a movie. Either field may be
// absent in the upstream payload.
type Rating struct {
	Rating *float64 `json:"imdb_rating"`
	Votes  *int     `json:"imdb_votes"`
}

// Client queries OMDB rotating through an ordered list of API keys.
// The preferred key index is shared across calls so an exhausted credential
// is skipped first on the next request. Rotation is advisory under
// concurrency; a race self-corrects on the following call.
type Client struct {
	baseURL   string
	keys      []string
	preferred atomic.Int64
	http      *fetch.Client
	mock      bool
}

// NewClient creates an OMDB client with the given credentials.
func NewClient(keys []string, opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		keys:    keys,
		http:    fetch.NewClient(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithFetcher sets a custom retrying fetcher.
func WithFetcher(f *fetch.Client) Option {
	return func(client *Client) {
		if f != nil {
			client.http = f
		}
	}
}

// WithBaseURL sets a custom base URL for the OMDB API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = base
		}
	}
}

// WithMock enables deterministic offline ratings derived from the IMDb ID.
func WithMock(enabled bool) Option {
	return func(client *Client) {
		client.mock = enabled
	}
}

type omdbPayload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDBRating string `json:"imdbRating"`
	IMDBVotes  string `json:"imdbVotes"`
}

// Rating fetches the rating/vote pair for an IMDb ID. A nil result means
// "no rating": the movie is unknown to OMDB, the payload carried no numbers,
// or every credential was exhausted. Credential exhaustion is never an error.
func (c *Client) Rating(ctx context.Context, imdbID string) (*Rating, error) {
	if imdbID == "" {
		return nil, nil
	}
	if c.mock {
		return mockRating(imdbID), nil
	}
	if len(c.keys) == 0 {
		return nil, nil
	}

	start := int(c.preferred.Load()) % len(c.keys)
	if start < 0 {
		start = 0
	}

	for offset := 0; offset < len(c.keys); offset++ {
		idx := (start + offset) % len(c.keys)

		payload, err := c.fetch(ctx, c.keys[idx], imdbID)
		if err != nil {
			if isRotationSignal(err, "") {
				c.preferred.Store(int64((idx + 1) % len(c.keys)))
				continue
			}
			slog.Debug("omdb request failed", "imdb_id", imdbID, "error", err)
			return nil, nil
		}

		if payload.Response != "True" {
			if isRotationSignal(nil, payload.Error) {
				c.preferred.Store(int64((idx + 1) % len(c.keys)))
				continue
			}
			// Definitive miss such as "Movie not found!": keep using this key.
			c.preferred.Store(int64(idx))
			return nil, nil
		}

		c.preferred.Store(int64(idx))
		result := parseRating(payload)
		if result.Rating == nil && result.Votes == nil {
			return nil, nil
		}
		return result, nil
	}

	slog.Warn("omdb credentials exhausted", "imdb_id", imdbID, "keys", len(c.keys))
	return nil, nil
}

func (c *Client) fetch(ctx context.Context, key, imdbID string) (*omdbPayload, error) {
	params := url.Values{}
	params.Set("apikey", key)
	params.Set("i", imdbID)
	params.Set("type", "movie")

	var payload omdbPayload
	if err := c.http.GetJSON(ctx, c.baseURL, params, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// isRotationSignal reports whether the HTTP error or payload error message
// indicates a credential problem worth rotating past.
func isRotationSignal(err error, payloadError string) bool {
	if err != nil {
		if apperrors.IsRateLimitError(err) {
			return true
		}
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
				return true
			}
		}
		return false
	}

	msg := strings.ToLower(payloadError)
	if strings.Contains(msg, "request limit reached") {
		return true
	}
	if strings.Contains(msg, "invalid api key") {
		return true
	}
	if strings.Contains(msg, "api key") && strings.Contains(msg, "required") {
		return true
	}
	return false
}

func parseRating(payload *omdbPayload) *Rating {
	result := &Rating{}
	if payload.IMDBRating != "" && payload.IMDBRating != "N/A" {
		if value, err := strconv.ParseFloat(payload.IMDBRating, 64); err == nil {
			result.Rating = &value
		}
	}
	if payload.IMDBVotes != "" && payload.IMDBVotes != "N/A" {
		raw := strings.ReplaceAll(payload.IMDBVotes, ",", "")
		if votes, err := strconv.Atoi(raw); err == nil {
			result.Votes = &votes
		}
	}
	return result
}
