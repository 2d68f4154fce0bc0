// Package fetch provides a retrying HTTP-JSON client shared by every
// upstream API wrapper.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/filmspin/filmspin/internal/errors"
)

const (
	defaultRetries   = 2
	defaultBaseDelay = 250 * time.Millisecond
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses that were not retried away.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client wraps an HTTP client with bounded retries and exponential backoff.
type Client struct {
	httpClient HTTPDoer
	retries    int
	baseDelay  time.Duration
	sleep      func(time.Duration)
}

// NewClient creates a retrying JSON fetcher.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retries:    defaultRetries,
		baseDelay:  defaultBaseDelay,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithRetries sets how many times a request is retried after its first attempt.
func WithRetries(retries int) Option {
	return func(client *Client) {
		if retries >= 0 {
			client.retries = retries
		}
	}
}

// WithBaseDelay sets the initial backoff delay. The delay doubles per attempt.
func WithBaseDelay(delay time.Duration) Option {
	return func(client *Client) {
		if delay >= 0 {
			client.baseDelay = delay
		}
	}
}

// GetJSON performs a GET request and decodes the JSON response into target.
// Transient failures (HTTP 429/5xx, timeouts, connection errors) are retried
// with exponential backoff; other failures propagate to the caller.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, target any) error {
	endpoint := rawURL
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		endpoint = rawURL + sep + params.Encode()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		err := c.doJSONRequest(ctx, endpoint, headers, target)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) || attempt >= c.retries {
			var statusErr *StatusError
			if errors.As(lastErr, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
				return apperrors.NewRateLimitError("request limit reached: " + stripQuery(endpoint))
			}
			return lastErr
		}
		delay := c.baseDelay << uint(attempt)
		// Query strings can carry credentials, log the bare URL only.
		slog.Warn("retrying upstream request",
			"url", stripQuery(endpoint),
			"attempt", attempt+1,
			"delay", delay,
			"error_class", errorClass(err))
		c.sleep(delay)
	}
}

func (c *Client) doJSONRequest(ctx context.Context, endpoint string, headers map[string]string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		// Network errors (connection resets etc.)
		if strings.Contains(urlErr.Error(), "connection") {
			return true
		}
	}
	return false
}

func errorClass(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		return "transport"
	}
	return "unknown"
}

func stripQuery(endpoint string) string {
	if idx := strings.IndexByte(endpoint, '?'); idx >= 0 {
		return endpoint[:idx]
	}
	return endpoint
}
