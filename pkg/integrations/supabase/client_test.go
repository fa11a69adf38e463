package supabase

import (
	"context"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/integrations"
)

const baseURL = "https://project.supabase.co"

var (
	categoryRows = []catalog.CategoryRecord{
		{ID: 1, Name: "Generic", Path: "generic"},
		{ID: 3, Name: "Anime", Path: "anime"},
		{ID: 30, Name: "Dragon Ball", Path: "anime/dragon-ball", PID: 3},
	}
	characterRows = []catalog.Record{
		{ID: "a", Name: "Average Woman", Height: 1.62, CatIDs: []int{1}, Gender: "Female"},
		{ID: "g", Name: "Goku", Height: 1.75, CatIDs: []int{3, 30}, Gender: "male", MediaURL: "https://img/goku.png"},
	}
)

func newTestClient(t *testing.T, c cache.Cache) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+categoriesPath,
		map[string]string{"select": "*", "order": "id"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, categoryRows))
	client := NewClient(Config{URL: baseURL, Key: "anon", CacheTTL: time.Hour}, c,
		integrations.WithTransport(mt), integrations.WithRetry(0, 0, 0))
	return client, mt
}

func TestCharacters(t *testing.T) {
	client, mt := newTestClient(t, nil)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name"},
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "anon", req.Header.Get("apikey"))
			assert.Equal(t, "Bearer anon", req.Header.Get("Authorization"))
			return httpmock.NewJsonResponse(http.StatusOK, characterRows)
		})

	chars, err := client.Characters(context.Background())
	require.NoError(t, err)
	require.Len(t, chars, 2)

	goku := chars[1]
	assert.Equal(t, 175.0, goku.Height)
	assert.Equal(t, "Anime", goku.Category)
	assert.Equal(t, "Dragon Ball", goku.Subcategory)
	assert.Equal(t, "https://img/goku.png", goku.ImageURL)
	assert.Equal(t, "female", chars[0].Gender)
}

func TestByCategory(t *testing.T) {
	client, mt := newTestClient(t, nil)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name", "cat_ids": "cs.{3}"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows[1:]))

	chars, err := client.ByCategory(context.Background(), catalog.CategoryAnime)
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "Goku", chars[0].Name)
}

func TestSearch(t *testing.T) {
	client, mt := newTestClient(t, nil)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name", "name": "ilike.*gok*", "limit": "20"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows[1:]))

	chars, err := client.Search(context.Background(), "gok", 0)
	require.NoError(t, err)
	assert.Len(t, chars, 1)
}

func TestByID(t *testing.T) {
	client, mt := newTestClient(t, nil)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "id": "eq.g", "limit": "1"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows[1:]))
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "id": "eq.nope", "limit": "1"},
		httpmock.NewStringResponder(http.StatusOK, "[]"))

	c, err := client.ByID(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, "Goku", c.Name)

	_, err = client.ByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, errors.ErrCodeCharacterNotFound), "err = %v", err)
}

func TestRandomAndStats(t *testing.T) {
	client, mt := newTestClient(t, nil)
	client.WithRand(rand.New(rand.NewPCG(3, 4)))
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows))

	got, err := client.Random(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 162.0, stats.HeightRange.Min)
}

func TestErrorsCarryCodes(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
	}{
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimited},
		{http.StatusBadGateway, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			mt := httpmock.NewMockTransport()
			mt.RegisterNoResponder(httpmock.NewStringResponder(tt.status, ""))
			client := NewClient(Config{URL: baseURL}, nil,
				integrations.WithTransport(mt), integrations.WithRetry(0, 0, 0))

			_, err := client.Categories(context.Background())
			assert.Equal(t, tt.code, errors.GetCode(err), "err = %v", err)
		})
	}
}

func TestResponsesAreCached(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()

	client, mt := newTestClient(t, store)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows))

	for i := 0; i < 3; i++ {
		_, err := client.Characters(context.Background())
		require.NoError(t, err)
	}
	// One characters request and one categories request.
	assert.Equal(t, 2, mt.GetTotalCallCount())
}

func TestMemoOverClient(t *testing.T) {
	client, mt := newTestClient(t, nil)
	mt.RegisterResponderWithQuery(http.MethodGet, baseURL+charactersPath,
		map[string]string{"select": "*", "order": "name"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, characterRows))

	memo := catalog.NewMemo(client, "supabase")
	for i := 0; i < 3; i++ {
		got, err := memo.Search(context.Background(), "GOK", 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	// Memo fetch: characters (which reads categories) plus categories.
	assert.LessOrEqual(t, mt.GetTotalCallCount(), 3)
}
