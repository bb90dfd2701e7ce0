package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// DefaultSourceName labels a resolution served from the built-in posts.
const DefaultSourceName = "default"

const DefaultSourceTimeout = 10 * time.Second

// Resolution is the outcome of one resolve pass.
type Resolution struct {
	Posts []posts.Post
	// Source is the name of the source that supplied Posts.
	Source string
}

type ResolverOptions struct {
	// Defaults are returned when every source fails or comes back empty.
	// Nil means DefaultPosts().
	Defaults []posts.Post
	// Timeout bounds each source attempt. Zero means DefaultSourceTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Resolver asks its sources in order and returns the first non-empty answer.
type Resolver struct {
	sources  []Source
	defaults []posts.Post
	timeout  time.Duration
	logger   *slog.Logger
}

func NewResolver(opts ResolverOptions, sources ...Source) *Resolver {
	if opts.Defaults == nil {
		opts.Defaults = DefaultPosts()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSourceTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver{
		sources:  sources,
		defaults: opts.Defaults,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// Resolve never fails. Sources are tried one at a time; a source is only
// contacted after every earlier one has failed or returned nothing.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	for _, s := range r.sources {
		list, err := r.attempt(ctx, s)
		if err != nil {
			r.logger.Warn("post source failed, trying next", "source", s.Name(), "error", err)
			continue
		}
		if len(list) == 0 {
			r.logger.Debug("post source empty, trying next", "source", s.Name())
			continue
		}
		return Resolution{Posts: list, Source: s.Name()}
	}

	r.logger.Info("all post sources unavailable, serving built-in posts")
	out := make([]posts.Post, len(r.defaults))
	for i, p := range r.defaults {
		out[i] = p.Clone().WithDefaults()
	}
	return Resolution{Posts: out, Source: DefaultSourceName}
}

// GetBlogPosts returns the resolved posts without the source label.
func (r *Resolver) GetBlogPosts(ctx context.Context) []posts.Post {
	return r.Resolve(ctx).Posts
}

// Post looks up one post by id in the resolved collection.
func (r *Resolver) Post(ctx context.Context, id string) (posts.Post, bool) {
	return posts.Find(r.GetBlogPosts(ctx), id)
}

func (r *Resolver) attempt(ctx context.Context, s Source) ([]posts.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return s.FetchAll(ctx)
}
