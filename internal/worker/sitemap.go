// Package worker reacts to post change events.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudslate/cloudslate/internal/events"
	"github.com/cloudslate/cloudslate/internal/posts"
	"github.com/cloudslate/cloudslate/internal/sitemap"
	"github.com/cloudslate/cloudslate/internal/storage"
)

// ErrInvalidEvent marks a message that can never be processed.
var ErrInvalidEvent = errors.New("invalid event")

// SitemapBuilder regenerates the sitemap whenever the post collection changes.
type SitemapBuilder struct {
	svc     *posts.Service
	store   storage.Store
	siteURL string
	logger  *slog.Logger
	now     func() time.Time
}

func NewSitemapBuilder(store storage.Store, siteURL string, logger *slog.Logger) *SitemapBuilder {
	return &SitemapBuilder{
		svc:     posts.NewService(store, nil, logger),
		store:   store,
		siteURL: siteURL,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle processes one message body. Bodies that are not post events are
// ignored; malformed ones return ErrInvalidEvent.
func (b *SitemapBuilder) Handle(ctx context.Context, body []byte) error {
	var e events.PostChanged
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if !events.IsPostChange(e.Type) {
		b.logger.Debug("ignoring event type", "type", e.Type)
		return nil
	}
	b.logger.Info("post change received", "type", e.Type, "post_id", e.Payload.PostID)
	return b.Rebuild(ctx)
}

// Rebuild renders the sitemap from the stored collection and saves it under
// sitemap.Key.
func (b *SitemapBuilder) Rebuild(ctx context.Context) error {
	list, err := b.svc.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	out, err := sitemap.Build(b.siteURL, posts.SortByDate(list), b.now())
	if err != nil {
		return err
	}
	if _, err := b.store.Put(ctx, sitemap.Key, out); err != nil {
		return fmt.Errorf("store sitemap: %w", err)
	}
	b.logger.Info("sitemap rebuilt", "posts", len(list))
	return nil
}
