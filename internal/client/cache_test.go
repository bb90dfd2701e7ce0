package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudslate/cloudslate/internal/posts"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newCached(src Source, ttl time.Duration) (*CachedSource, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := Cached(src, ttl)
	c.now = clock.Now
	return c, clock
}

func TestCachedSource_TTL(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{name: "api", posts: []posts.Post{post("a", "A")}}
	c, clock := newCached(src, time.Minute)

	_, err := c.FetchAll(ctx)
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	_, err = c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Calls(), "second read within ttl should hit the cache")

	clock.Advance(2 * time.Second)
	_, err = c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls(), "read after ttl should refetch")
}

func TestCachedSource_FailureKeepsPreviousEntry(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{name: "cms", posts: []posts.Post{post("a", "A")}}
	c, clock := newCached(src, time.Minute)

	_, err := c.FetchAll(ctx)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	src.err = &FetchError{Source: "cms", Kind: ErrNetwork}
	_, err = c.FetchAll(ctx)
	assert.True(t, errors.Is(err, ErrNetwork))

	// The stale entry was not refreshed, so the next read still goes out.
	src.err = nil
	src.posts = []posts.Post{post("b", "B")}
	got, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 3, src.Calls())
}

func TestCachedSource_EmptyResultIsCached(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{name: "api", posts: []posts.Post{}}
	c, _ := newCached(src, time.Minute)

	for range 3 {
		got, err := c.FetchAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, src.Calls())
}

func TestCachedSource_CallerCannotMutateEntry(t *testing.T) {
	ctx := context.Background()
	p := post("a", "A")
	p.Tags = []string{"go"}
	p.Keywords = []string{"blog"}
	src := &stubSource{name: "api", posts: []posts.Post{p}}
	c, _ := newCached(src, time.Minute)

	first, err := c.FetchAll(ctx)
	require.NoError(t, err)
	first[0].Tags[0] = "changed"

	got, err := c.FetchAll(ctx)
	require.NoError(t, err)
	got[0].Title = "changed"
	got[0].Tags[0] = "changed"
	got[0].Keywords[0] = "changed"

	again, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Title)
	assert.Equal(t, []string{"go"}, again[0].Tags)
	assert.Equal(t, []string{"blog"}, again[0].Keywords)
	assert.Equal(t, 1, src.Calls())
}

// blockingSource holds every fetch until release is closed.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSource) Name() string { return "api" }

func (b *blockingSource) FetchAll(context.Context) ([]posts.Post, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return []posts.Post{post("a", "A")}, nil
}

func TestCachedSource_WaitingCallerHonoursContext(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	c, _ := newCached(src, time.Minute)

	type result struct {
		list []posts.Post
		err  error
	}
	done := make(chan result, 1)
	go func() {
		list, err := c.FetchAll(context.Background())
		done <- result{list, err}
	}()
	<-src.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.FetchAll(ctx)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "caller must not wait for the in-flight fetch")

	close(src.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, res.list, 1)

	_, err = c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, "api", c.Name())
}
