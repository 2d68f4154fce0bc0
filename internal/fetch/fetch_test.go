package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/filmspin/filmspin/internal/errors"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestGetJSONRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetries(2), WithBaseDelay(0))

	var payload map[string]string
	err := client.GetJSON(context.Background(), server.URL, nil, nil, &payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSONDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetries(3), WithBaseDelay(0))

	err := client.GetJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONAppendsParamsAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("page"))
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))
	params := url.Values{}
	params.Set("page", "42")

	var payload map[string]any
	err := client.GetJSON(context.Background(), server.URL, params, map[string]string{"X-API-KEY": "secret"}, &payload)
	require.NoError(t, err)
}

func TestGetJSONExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetries(2), WithBaseDelay(0))

	err := client.GetJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&StatusError{StatusCode: 429}))
	assert.True(t, isRetryable(&StatusError{StatusCode: 503}))
	assert.False(t, isRetryable(&StatusError{StatusCode: 404}))

	retryErr := &url.Error{Err: timeoutError{}}
	assert.True(t, isRetryable(retryErr))

	connErr := &url.Error{Err: errors.New("connection reset by peer")}
	assert.True(t, isRetryable(connErr))

	nonRetryErr := &url.Error{Err: errors.New("bad request")}
	assert.False(t, isRetryable(nonRetryErr))
}

func TestBackoffDoublesPerAttempt(t *testing.T) {
	var delays []time.Duration
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetries(3), WithBaseDelay(100*time.Millisecond))
	client.sleep = func(d time.Duration) { delays = append(delays, d) }

	err := client.GetJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}, delays)
}

func TestGetJSONSurfacesRequestLimitAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetries(1), WithBaseDelay(0))

	err := client.GetJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimitError(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "http://x/path", stripQuery("http://x/path?api_key=secret"))
	assert.Equal(t, "http://x/path", stripQuery("http://x/path"))
}
