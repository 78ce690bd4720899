package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

type PostHandler struct {
	sessions *services.SessionFactory
}

func NewPostHandler(sessions *services.SessionFactory) *PostHandler {
	return &PostHandler{sessions: sessions}
}

// GetPosts returns the caller's timeline, newest first.
func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	posts, err := s.Posts.Timeline(ctx)
	if err != nil {
		writeStoreError(w, "GetPosts", s.DID, err, "Failed to load posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(posts))
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	receipt, err := s.Posts.CreatePost(ctx, &req)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNoRecipients):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Select at least one DID to share this post with"))
		return
	case errors.Is(err, services.ErrImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, models.NewErrorResponse(err.Error()))
		return
	default:
		writeStoreError(w, "CreatePost", s.DID, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(receipt))
}
