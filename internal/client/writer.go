package client

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// WriteResult reports where a write landed. Degraded is set when the remote
// store could not be reached and the change exists only locally.
type WriteResult struct {
	Post     *posts.Post
	Posts    []posts.Post
	Degraded bool
	Source   string
}

// Writer sends mutations to the storage API and falls back to local storage
// when the API is unavailable. Definitive answers from the API, such as an
// auth failure or a missing post, are returned without falling back.
type Writer struct {
	remote PostWriter
	local  *LocalSource
	logger *slog.Logger
}

func NewWriter(remote PostWriter, local *LocalSource, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{remote: remote, local: local, logger: logger}
}

func (w *Writer) CreatePost(ctx context.Context, p posts.Post) (WriteResult, error) {
	return w.write(ctx, "create", func(pw PostWriter) (*posts.Post, error) {
		return pw.Create(ctx, p)
	})
}

func (w *Writer) UpdatePost(ctx context.Context, id string, patch posts.Patch) (WriteResult, error) {
	return w.write(ctx, "update", func(pw PostWriter) (*posts.Post, error) {
		return pw.Update(ctx, id, patch)
	})
}

func (w *Writer) DeletePost(ctx context.Context, id string) (WriteResult, error) {
	return w.write(ctx, "delete", func(pw PostWriter) (*posts.Post, error) {
		return nil, pw.Delete(ctx, id)
	})
}

// SavePosts pushes every post in list to the API, updating posts that exist
// and creating the rest. If the API becomes unavailable part way through, the
// whole list replaces the local collection instead, with the posts the API
// already accepted stored as the API returned them so their ids carry over.
func (w *Writer) SavePosts(ctx context.Context, list []posts.Post) (WriteResult, error) {
	saved := make([]posts.Post, 0, len(list))
	for _, p := range list {
		out, err := w.upsert(ctx, p)
		if err == nil {
			saved = append(saved, *out)
			continue
		}
		if !isUnavailable(err) {
			return WriteResult{}, err
		}

		w.logger.Warn("storage API unavailable, saving posts locally", "op", "save", "error", err)
		pending := append(saved, list[len(saved):]...)
		local, lerr := w.local.Save(ctx, pending)
		if lerr != nil {
			return WriteResult{}, errors.Join(err, lerr)
		}
		return WriteResult{Posts: local, Degraded: true, Source: LocalSourceName}, nil
	}
	return WriteResult{Posts: saved, Source: APISourceName}, nil
}

func (w *Writer) upsert(ctx context.Context, p posts.Post) (*posts.Post, error) {
	if p.ID == "" {
		return w.remote.Create(ctx, p)
	}
	patch, err := posts.PatchFrom(p)
	if err != nil {
		return nil, err
	}
	out, err := w.remote.Update(ctx, p.ID, patch)
	if errors.Is(err, posts.ErrNotFound) {
		return w.remote.Create(ctx, p)
	}
	return out, err
}

func (w *Writer) write(ctx context.Context, op string, fn func(PostWriter) (*posts.Post, error)) (WriteResult, error) {
	out, err := fn(w.remote)
	if err == nil {
		return WriteResult{Post: out, Source: APISourceName}, nil
	}
	if !isUnavailable(err) {
		return WriteResult{}, err
	}

	w.logger.Warn("storage API unavailable, writing locally", "op", op, "error", err)
	out, lerr := fn(w.local)
	if lerr != nil {
		return WriteResult{}, errors.Join(err, lerr)
	}
	return WriteResult{Post: out, Degraded: true, Source: LocalSourceName}, nil
}
