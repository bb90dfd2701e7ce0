package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/storage"
)

const (
	LocalSourceName = "local"
	// LocalPostsKey is the key the device-local collection is kept under.
	LocalPostsKey = "cloudslate_admin_posts"
)

var (
	_ Source     = (*LocalSource)(nil)
	_ PostWriter = (*LocalSource)(nil)
)

// LocalSource is the device-local copy of the collection. Reads never fail:
// missing or unreadable data is reported as an empty list.
type LocalSource struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewLocalSource(store storage.Store, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{
		svc:    posts.NewService(store, nil, logger).WithKey(LocalPostsKey),
		logger: logger,
	}
}

func (l *LocalSource) Name() string {
	return LocalSourceName
}

func (l *LocalSource) FetchAll(ctx context.Context) ([]posts.Post, error) {
	list, err := l.svc.ListPosts(ctx)
	if err != nil {
		l.logger.Warn("local posts unreadable, treating as empty", "error", err)
		return []posts.Post{}, nil
	}
	return list, nil
}

func (l *LocalSource) Create(ctx context.Context, p posts.Post) (*posts.Post, error) {
	return l.svc.CreatePost(ctx, p)
}

func (l *LocalSource) Update(ctx context.Context, id string, patch posts.Patch) (*posts.Post, error) {
	return l.svc.UpdatePost(ctx, id, patch)
}

func (l *LocalSource) Delete(ctx context.Context, id string) error {
	return l.svc.DeletePost(ctx, id)
}

// Save replaces the local collection with list. Posts without an id get a
// generated one.
func (l *LocalSource) Save(ctx context.Context, list []posts.Post) ([]posts.Post, error) {
	saved := make([]posts.Post, len(list))
	for i, p := range list {
		if p.ID == "" {
			p.ID = posts.NewID(time.Now())
		}
		saved[i] = p.WithDefaults()
	}
	if err := l.svc.Replace(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}
