package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudslate/cloudslate/internal/client"
	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/events"
	"github.com/cloudslate/cloudslate/internal/handlers"
	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	st, closeFn, err := OpenStore(ctx, &config.Config{KVBackend: "memory"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, st)
	assert.NoError(t, closeFn())

	st, _, err = OpenStore(ctx, &config.Config{KVBackend: "file", KVDir: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, st)

	for _, cfg := range []*config.Config{
		{KVBackend: "s3"},
		{KVBackend: "postgres"},
		{KVBackend: "redis"},
		{KVBackend: "etcd"},
	} {
		_, _, err := OpenStore(ctx, cfg, logger)
		assert.Error(t, err, cfg.KVBackend)
	}
}

func TestOpenPublisher_NoURL(t *testing.T) {
	pub, closeFn := OpenPublisher(&config.Config{}, discardLogger())
	assert.IsType(t, events.NoopPublisher{}, pub)
	assert.NoError(t, closeFn())
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Client: config.ClientConfig{
			APIURL:       apiURL,
			APIToken:     "tok",
			LocalDir:     t.TempDir(),
			APICacheTTL:  time.Minute,
			CMSCacheTTL:  time.Minute,
			FetchTimeout: time.Second,
		},
	}
}

func TestNewClient_OnlineAndOffline(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterDeps{
		Service:    posts.NewService(storage.NewMemoryStore(), nil, logger),
		AdminToken: "tok",
		Logger:     logger,
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(t, srv.URL), logger)
	require.NoError(t, err)
	assert.Nil(t, c.CMS)

	res := c.Resolver.Resolve(ctx)
	assert.Equal(t, client.DefaultSourceName, res.Source, "empty API and local fall through to defaults")

	w, err := c.Writer.CreatePost(ctx, posts.Post{Title: "Online"})
	require.NoError(t, err)
	assert.False(t, w.Degraded)

	// The cached empty API answer holds until its ttl runs out.
	res = c.Resolver.Resolve(ctx)
	assert.Equal(t, client.DefaultSourceName, res.Source)

	fresh, err := NewClient(testConfig(t, srv.URL), logger)
	require.NoError(t, err)
	res = fresh.Resolver.Resolve(ctx)
	assert.Equal(t, client.APISourceName, res.Source)
	require.Len(t, res.Posts, 1)

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	offline, err := NewClient(testConfig(t, down.URL), logger)
	require.NoError(t, err)
	w, err = offline.Writer.CreatePost(ctx, posts.Post{Title: "Offline"})
	require.NoError(t, err)
	assert.True(t, w.Degraded)
	res = offline.Resolver.Resolve(ctx)
	assert.Equal(t, client.LocalSourceName, res.Source)
}

func TestNewClient_WithCMS(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Sanity = config.SanityConfig{ProjectID: "p", Dataset: "production", APIVersion: "2024-01-01"}

	c, err := NewClient(cfg, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, c.CMS)
}
