package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudslate/cloudslate/internal/events"
	"github.com/cloudslate/cloudslate/internal/storage"
)

// CollectionKey is the single store key holding the whole post collection.
const CollectionKey = "posts"

const maxWriteAttempts = 5

// Service reads and mutates the post collection, stored as one JSON array.
// Every mutation is a read-modify-write guarded by the store's
// CompareAndSwap, retried on version mismatch, so concurrent writers never
// silently overwrite each other.
type Service struct {
	store     storage.Store
	key       string
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store storage.Store, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		key:       CollectionKey,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithKey returns a copy of the service that keeps its collection under key.
func (s *Service) WithKey(key string) *Service {
	c := *s
	c.key = key
	return &c
}

// Replace overwrites the whole collection with list, regardless of what is
// currently stored.
func (s *Service) Replace(ctx context.Context, list []Post) error {
	if list == nil {
		list = []Post{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if _, err := s.store.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	collection, _, err := s.load(ctx)
	return collection, err
}

func (s *Service) CreatePost(ctx context.Context, post Post) (*Post, error) {
	now := s.now().UTC()
	if post.ID == "" {
		post.ID = NewID(now)
	}
	post.CreatedAt = now.Format(time.RFC3339)
	post = post.WithDefaults()

	err := s.mutate(ctx, func(collection []Post) ([]Post, bool, error) {
		for _, p := range collection {
			if p.ID == post.ID {
				return nil, false, ErrIDExists
			}
		}
		return append(collection, post), true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypePostCreated, post)
	return &post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id string, patch Patch) (*Post, error) {
	var updated Post
	err := s.mutate(ctx, func(collection []Post) ([]Post, bool, error) {
		for i, p := range collection {
			if p.ID != id {
				continue
			}
			merged, err := patch.Apply(p)
			if err != nil {
				return nil, false, err
			}
			merged.UpdatedAt = s.now().UTC().Format(time.RFC3339)
			collection[i] = merged
			updated = merged
			return collection, true, nil
		}
		return nil, false, ErrNotFound
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypePostUpdated, updated)
	return &updated, nil
}

// DeletePost removes the post with id. Deleting an absent id succeeds and
// leaves the stored collection untouched.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	var removed *Post
	err := s.mutate(ctx, func(collection []Post) ([]Post, bool, error) {
		removed = nil
		kept := make([]Post, 0, len(collection))
		for _, p := range collection {
			if p.ID == id {
				removed = &p
				continue
			}
			kept = append(kept, p)
		}
		return kept, removed != nil, nil
	})
	if err != nil {
		return err
	}

	if removed != nil {
		s.publish(ctx, events.TypePostDeleted, *removed)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) load(ctx context.Context) ([]Post, string, error) {
	obj, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Post{}, "", nil
		}
		return nil, "", fmt.Errorf("get collection: %w", err)
	}

	var collection []Post
	if err := json.Unmarshal(obj.Value, &collection); err != nil {
		return nil, "", fmt.Errorf("decode collection: %w", err)
	}
	if collection == nil {
		collection = []Post{}
	}
	return collection, obj.Version, nil
}

// mutate applies fn to the current collection and writes the result back.
// fn reports whether anything changed; unchanged collections are not written.
func (s *Service) mutate(ctx context.Context, fn func([]Post) ([]Post, bool, error)) error {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		collection, version, err := s.load(ctx)
		if err != nil {
			return err
		}

		next, changed, err := fn(collection)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode collection: %w", err)
		}
		_, err = s.store.CompareAndSwap(ctx, s.key, raw, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrVersionMismatch) {
			return fmt.Errorf("write collection: %w", err)
		}
		s.logger.Debug("collection changed during write, retrying", "attempt", attempt)
	}
	return ErrConflict
}

func (s *Service) publish(ctx context.Context, eventType string, p Post) {
	e := events.NewPostChanged(eventType, p.ID, p.Slug, p.Title)
	if err := s.publisher.PublishPostChanged(ctx, e); err != nil {
		s.logger.Error("publish post event failed", "type", eventType, "post_id", p.ID, "error", err)
	}
}
