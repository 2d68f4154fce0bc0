// Package tmdb provides a client for TheMovieDB API.
package tmdb

import (
	"context"
	"net/url"
	"strings"

	"github.com/filmspin/filmspin/internal/fetch"
	"github.com/filmspin/filmspin/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://api.themoviedb.org/3"
	defaultRatePerSecond = 4 // TMDB allows ~40 requests per 10 seconds
)

// Client is a TMDB API client. It injects the API key into every call and
// returns loosely-typed payloads; normalization happens in the resolver.
type Client struct {
	apiKey      string
	baseURL     string
	http        *fetch.Client
	rateLimiter *ratelimit.Limiter
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		http:        fetch.NewClient(),
		rateLimiter: ratelimit.New("TMDB", defaultRatePerSecond),
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

// WithBaseURL sets a custom base URL for the TMDB API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// Get performs a GET request against the given API path. Params are optional;
// the API key is always injected. Non-object payloads collapse to an empty map.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", c.apiKey)

	var payload any
	if err := c.http.GetJSON(ctx, c.baseURL+path, query, nil, &payload); err != nil {
		return nil, err
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return obj, nil
}
