package client

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/cloudslate/cloudslate/internal/posts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSource returns fixed posts or a fixed error and counts its calls.
type stubSource struct {
	name  string
	posts []posts.Post
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchAll(context.Context) ([]posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]posts.Post(nil), s.posts...), nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func post(id, title string) posts.Post {
	return posts.Post{ID: id, Title: title, Date: "2024-01-01", Tags: []string{}}
}
