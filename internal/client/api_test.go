package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudslate/cloudslate/internal/handlers"
	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/storage"
)

const apiToken = "secret-token"

// newAPIServer runs the real storage API router over an in-memory store.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := discardLogger()
	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterDeps{
		Service:    posts.NewService(storage.NewMemoryStore(), nil, logger),
		AdminToken: apiToken,
		Logger:     logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPISource_RoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)
	api := NewAPISource(srv.URL+"/", apiToken, srv.Client())

	list, err := api.FetchAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := api.Create(ctx, posts.Post{Title: "T", Category: "Tech"})
	require.NoError(t, err)
	assert.True(t, posts.IsGeneratedID(created.ID), created.ID)
	assert.Equal(t, posts.DefaultReadTime, created.ReadTime)

	updated, err := api.Update(ctx, created.ID, posts.Patch{"title": json.RawMessage(`"T2"`)})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, created.ID, updated.ID)

	list, err = api.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T2", list[0].Title)

	require.NoError(t, api.Delete(ctx, created.ID))
	list, err = api.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAPISource_Errors(t *testing.T) {
	ctx := context.Background()
	srv := newAPIServer(t)

	t.Run("wrong token", func(t *testing.T) {
		api := NewAPISource(srv.URL, "nope", srv.Client())
		_, err := api.Create(ctx, posts.Post{Title: "T"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.False(t, isUnavailable(err))
	})

	t.Run("missing post", func(t *testing.T) {
		api := NewAPISource(srv.URL, apiToken, srv.Client())
		_, err := api.Update(ctx, "nope", posts.Patch{"title": json.RawMessage(`"x"`)})
		assert.ErrorIs(t, err, posts.ErrNotFound)
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusNotFound, fe.Status)
	})

	t.Run("reads need no token", func(t *testing.T) {
		api := NewAPISource(srv.URL, "", srv.Client())
		_, err := api.FetchAll(ctx)
		assert.NoError(t, err)
	})
}

func TestAPISource_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	api := NewAPISource(srv.URL, apiToken, srv.Client())
	require.NoError(t, api.Delete(context.Background(), "a/b c"))
	assert.Equal(t, "/api/posts/a%2Fb%20c", gotPath)
}

func TestAPISource_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewAPISource(srv.URL, apiToken, srv.Client()).FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
	assert.True(t, isUnavailable(err))
}
