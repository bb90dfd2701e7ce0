package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cloudslate/cloudslate/internal/posts"
)

const (
	DefaultAPICacheTTL = time.Minute
	DefaultCMSCacheTTL = 5 * time.Minute
)

var _ Source = (*CachedSource)(nil)

type cacheEntry struct {
	posts     []posts.Post
	fetchedAt time.Time
}

// CachedSource keeps the last successful result of a source for ttl.
// Entries expire by age only. Failures never replace or clear a cached entry.
//
// Concurrent callers share a single in-flight fetch, which runs with the
// context of the caller that started it. Every caller stops waiting when its
// own context ends.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu    sync.Mutex
	entry *cacheEntry
}

func Cached(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, ttl: ttl, now: time.Now}
}

func (c *CachedSource) Name() string {
	return c.source.Name()
}

func (c *CachedSource) FetchAll(ctx context.Context) ([]posts.Post, error) {
	if list, ok := c.fresh(); ok {
		return list, nil
	}

	ch := c.group.DoChan("fetch", func() (any, error) {
		list, err := c.source.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entry = &cacheEntry{posts: clonePosts(list), fetchedAt: c.now()}
		c.mu.Unlock()
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, networkError(c.Name(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clonePosts(res.Val.([]posts.Post)), nil
	}
}

func (c *CachedSource) fresh() ([]posts.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || c.now().Sub(c.entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return clonePosts(c.entry.posts), true
}

func clonePosts(list []posts.Post) []posts.Post {
	if list == nil {
		return nil
	}
	out := make([]posts.Post, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}
