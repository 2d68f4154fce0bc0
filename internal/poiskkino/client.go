// Package poiskkino provides a client for the Poiskkino regional catalog API.
package poiskkino

import (
	"context"
	"net/url"
	"strings"

	"github.com/filmspin/filmspin/internal/fetch"
	"github.com/filmspin/filmspin/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://api.poiskkino.dev"
	defaultRatePerSecond = 5
)

// Client is a Poiskkino API client. Authentication goes through the
// X-API-KEY header rather than a query parameter.
type Client struct {
	baseURL     string
	headers     map[string]string
	http        *fetch.Client
	rateLimiter *ratelimit.Limiter
}

// NewClient creates a new Poiskkino API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:     defaultBaseURL,
		headers:     map[string]string{"X-API-KEY": apiKey},
		http:        fetch.NewClient(),
		rateLimiter: ratelimit.New("Poiskkino", defaultRatePerSecond),
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

// WithBaseURL sets a custom base URL for the Poiskkino API.
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

// Get performs a GET request expecting a JSON object payload.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	var payload any
	if err := c.getJSON(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return obj, nil
}

// GetList performs a GET request expecting a JSON array of objects.
func (c *Client) GetList(ctx context.Context, path string, params url.Values) ([]map[string]any, error) {
	var payload any
	if err := c.getJSON(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	return c.http.GetJSON(ctx, c.baseURL+path, params, c.headers, target)
}
