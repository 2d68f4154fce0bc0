package genres

import (
	"context"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmspin/filmspin/internal/store"
)

type fakeGlobal struct {
	calls   int
	payload map[string]any
}

func (f *fakeGlobal) Get(_ context.Context, path string, params url.Values) (map[string]any, error) {
	f.calls++
	return f.payload, nil
}

type fakeRegional struct {
	calls  int
	values []map[string]any
}

func (f *fakeRegional) GetList(_ context.Context, path string, params url.Values) ([]map[string]any, error) {
	f.calls++
	return f.values, nil
}

func newTestService(t *testing.T, global *fakeGlobal, regional *fakeRegional) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(store.NewCache(rdb), global, regional)
}

func TestGlobalGenresFetchOnceThenCache(t *testing.T) {
	global := &fakeGlobal{payload: map[string]any{
		"genres": []any{
			map[string]any{"id": float64(18), "name": "Drama"},
			map[string]any{"id": float64(28), "name": "Action"},
			map[string]any{"id": float64(99)},
		},
	}}
	svc := newTestService(t, global, &fakeRegional{})
	ctx := context.Background()

	items, err := svc.Global(ctx, "en-US")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Drama", items[0].Name)

	again, err := svc.Global(ctx, "en-US")
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, global.calls)
}

func TestGlobalGenresCachePerLanguage(t *testing.T) {
	global := &fakeGlobal{payload: map[string]any{
		"genres": []any{map[string]any{"id": float64(18), "name": "Drama"}},
	}}
	svc := newTestService(t, global, &fakeRegional{})
	ctx := context.Background()

	_, err := svc.Global(ctx, "en-US")
	require.NoError(t, err)
	_, err = svc.Global(ctx, "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, 2, global.calls)
}

func TestRegionalGenresLowercaseIDAndUcfirstName(t *testing.T) {
	regional := &fakeRegional{values: []map[string]any{
		{"name": "драма"},
		{"name": "комедия"},
		{"name": ""},
	}}
	svc := newTestService(t, &fakeGlobal{}, regional)
	ctx := context.Background()

	items, err := svc.Regional(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "драма", items[0].ID)
	assert.Equal(t, "Драма", items[0].Name)
	assert.Equal(t, "Комедия", items[1].Name)

	_, err = svc.Regional(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, regional.calls)
}
