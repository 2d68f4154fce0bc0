package poiskkino

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmspin/filmspin/internal/fetch"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("kino-key",
		WithBaseURL(server.URL),
		WithFetcher(fetch.NewClient(fetch.WithHTTPClient(server.Client()), fetch.WithBaseDelay(0))),
		WithRateLimiter(nil),
	)
}

func TestGetSendsAPIKeyHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kino-key", r.Header.Get("X-API-KEY"))
		_, _ = w.Write([]byte(`{"id":462682,"name":"Брат"}`))
	})

	payload, err := client.Get(context.Background(), "/v1.4/movie/462682", nil)
	require.NoError(t, err)
	assert.Equal(t, "Брат", payload["name"])
}

func TestGetListFiltersNonObjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "genres.name", r.URL.Query().Get("field"))
		_, _ = w.Write([]byte(`[{"name":"драма"},"junk",{"name":"комедия"}]`))
	})

	params := url.Values{}
	params.Set("field", "genres.name")
	items, err := client.GetList(context.Background(), "/v1/movie/possible-values-by-field", params)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "драма", items[0]["name"])
}

func TestGetListNonArrayPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":[]}`))
	})

	items, err := client.GetList(context.Background(), "/v1/whatever", nil)
	require.NoError(t, err)
	assert.Nil(t, items)
}
