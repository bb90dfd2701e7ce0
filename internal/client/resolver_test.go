package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/storage"
)

func TestResolver_FirstNonEmptyWins(t *testing.T) {
	cms := &stubSource{name: "cms", posts: []posts.Post{post("a", "A")}}
	api := &stubSource{name: "api", posts: []posts.Post{post("b", "B")}}
	local := &stubSource{name: "local", posts: []posts.Post{post("c", "C")}}

	r := NewResolver(ResolverOptions{Logger: discardLogger()}, cms, api, local)
	res := r.Resolve(context.Background())

	assert.Equal(t, "cms", res.Source)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "a", res.Posts[0].ID)
	assert.Equal(t, 1, cms.Calls())
	assert.Equal(t, 0, api.Calls(), "later sources must not be contacted")
	assert.Equal(t, 0, local.Calls())
}

func TestResolver_FallsThroughFailuresAndEmpties(t *testing.T) {
	cms := &stubSource{name: "cms", err: &FetchError{Source: "cms", Kind: ErrNetwork}}
	api := &stubSource{name: "api", posts: []posts.Post{}}

	st := storage.NewMemoryStore()
	local := NewLocalSource(st, discardLogger())
	_, err := local.Save(context.Background(), []posts.Post{post("l1", "One"), post("l2", "Two")})
	require.NoError(t, err)

	r := NewResolver(ResolverOptions{Logger: discardLogger()}, cms, api, local)
	res := r.Resolve(context.Background())

	assert.Equal(t, LocalSourceName, res.Source)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "l1", res.Posts[0].ID)
	assert.Equal(t, "l2", res.Posts[1].ID)
	assert.Equal(t, 1, cms.Calls())
	assert.Equal(t, 1, api.Calls())
}

func TestResolver_AllFailServesDefaults(t *testing.T) {
	down := &FetchError{Source: "x", Kind: ErrUpstream, Status: 503}
	r := NewResolver(ResolverOptions{Logger: discardLogger()},
		&stubSource{name: "cms", err: down},
		&stubSource{name: "api", err: down},
		NewLocalSource(storage.NewMemoryStore(), discardLogger()),
	)

	res := r.Resolve(context.Background())
	assert.Equal(t, DefaultSourceName, res.Source)
	assert.Equal(t, DefaultPosts(), res.Posts)

	res.Posts[0].Title = "mutated"
	res.Posts[0].Tags[0] = "mutated"
	again := r.GetBlogPosts(context.Background())
	assert.NotEqual(t, "mutated", again[0].Title)
	assert.NotEqual(t, "mutated", again[0].Tags[0])
}

func TestResolver_CustomDefaults(t *testing.T) {
	fallback := []posts.Post{{ID: "only", Title: "Only"}}
	r := NewResolver(ResolverOptions{Defaults: fallback, Logger: discardLogger()})

	got := r.GetBlogPosts(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].ID)
	assert.Equal(t, posts.DefaultReadTime, got[0].ReadTime)
	assert.Equal(t, []string{}, got[0].Tags)
}

// slowSource blocks until its context is done.
type slowSource struct{}

func (slowSource) Name() string { return "slow" }

func (slowSource) FetchAll(ctx context.Context) ([]posts.Post, error) {
	<-ctx.Done()
	return nil, &FetchError{Source: "slow", Kind: ErrNetwork, Err: ctx.Err()}
}

func TestResolver_TimeoutMovesOn(t *testing.T) {
	next := &stubSource{name: "api", posts: []posts.Post{post("b", "B")}}
	r := NewResolver(ResolverOptions{Timeout: 20 * time.Millisecond, Logger: discardLogger()}, slowSource{}, next)

	start := time.Now()
	res := r.Resolve(context.Background())

	assert.Equal(t, "api", res.Source)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolver_Post(t *testing.T) {
	r := NewResolver(ResolverOptions{Logger: discardLogger()},
		&stubSource{name: "api", posts: []posts.Post{post("a", "A"), post("b", "B")}})

	p, ok := r.Post(context.Background(), "b")
	require.True(t, ok)
	assert.Equal(t, "B", p.Title)

	_, ok = r.Post(context.Background(), "missing")
	assert.False(t, ok)
}
