package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cloudslate/cloudslate/internal/middleware"
	"github.com/cloudslate/cloudslate/internal/posts"
)

type RouterDeps struct {
	Service    *posts.Service
	AdminToken string
	Logger     *slog.Logger
}

// NewRouter wires the storage API routes behind CORS, request ids, request
// logging and admin-token checks, in that order.
func NewRouter(deps RouterDeps) http.Handler {
	h := NewPostsHandler(deps.Service, deps.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", h.List())
	mux.HandleFunc("POST /api/posts", h.Create())
	mux.HandleFunc("PUT /api/posts/{id}", h.Update())
	mux.HandleFunc("DELETE /api/posts/{id}", h.Delete())
	mux.HandleFunc("GET /api/health", Health())
	mux.HandleFunc("GET /api/ready", Ready(deps.Service))
	mux.HandleFunc("/", NotFound())

	return middleware.Chain(mux,
		middleware.CORS,
		middleware.RequestID,
		middleware.Logging(deps.Logger),
		middleware.AdminToken(deps.AdminToken),
	)
}
