package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudslate/cloudslate/internal/middleware"
	"github.com/cloudslate/cloudslate/internal/posts"
)

const maxBodyBytes = 1 << 20

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.ListPosts(r.Context())
		if err != nil {
			h.internalError(w, r, "list posts failed", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posts.Post
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
			return
		}

		// Only creates need a title. Updates merge onto the stored post.
		errs := make(map[string]string)
		if strings.TrimSpace(req.Title) == "" {
			errs["title"] = "required"
		}
		if len(errs) > 0 {
			writeError(w, http.StatusBadRequest, "validation failed", errs)
			return
		}

		post, err := h.svc.CreatePost(r.Context(), req)
		if err != nil {
			if errors.Is(err, posts.ErrIDExists) {
				writeError(w, http.StatusConflict, "Post id already exists", nil)
				return
			}
			h.writeMutationError(w, r, "create post failed", err)
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}

func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var patch posts.Patch
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil || patch == nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
			return
		}

		post, err := h.svc.UpdatePost(r.Context(), id, patch)
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrNotFound):
				writeError(w, http.StatusNotFound, "Post not found", nil)
			case errors.Is(err, posts.ErrInvalid):
				writeError(w, http.StatusBadRequest, "validation failed", nil)
			default:
				h.writeMutationError(w, r, "update post failed", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := h.svc.DeletePost(r.Context(), id); err != nil {
			h.writeMutationError(w, r, "delete post failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (h *PostsHandler) writeMutationError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, posts.ErrConflict) {
		writeError(w, http.StatusConflict, "Concurrent update, retry", nil)
		return
	}
	h.internalError(w, r, msg, err)
}

func (h *PostsHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "request_id", middleware.GetRequestID(r.Context()))
	writeError(w, http.StatusInternalServerError, "Internal server error", nil)
}
