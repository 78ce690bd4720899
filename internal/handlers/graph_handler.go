package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

type GraphHandler struct {
	sessions *services.SessionFactory
}

func NewGraphHandler(sessions *services.SessionFactory) *GraphHandler {
	return &GraphHandler{sessions: sessions}
}

func (h *GraphHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	following, err := s.Follows.GetFollowing(ctx)
	if err != nil {
		writeStoreError(w, "GetFollowing", s.DID, err, "Failed to load following")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(following))
}

func (h *GraphHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	followers, err := s.Follows.GetFollowers(ctx)
	if err != nil {
		writeStoreError(w, "GetFollowers", s.DID, err, "Failed to load followers")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(followers))
}

// Follow shares the listed attributes of the caller's profile with the peer.
// Callers without a profile share nothing.
func (h *GraphHandler) Follow(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	var req models.FollowRequest
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

	profile, err := s.Profiles.GetProfile(ctx)
	if err != nil && !errors.Is(err, services.ErrProfileNotFound) {
		writeStoreError(w, "Follow", s.DID, err, "Failed to load profile")
		return
	}

	receipt, err := s.Follows.Follow(ctx, profile, req.DID, req.AssignedName, req.SharedProfileAttributes)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAlreadyFollowing):
		writeJSON(w, http.StatusOK, models.NewInfoResponse("Already following this DID"))
		return
	case errors.Is(err, services.ErrFollowSelf):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("You cannot follow yourself"))
		return
	default:
		writeStoreError(w, "Follow", s.DID, err, "Failed to follow")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(receipt))
}

func (h *GraphHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	recordID := chi.URLParam(r, "recordId")
	peer := r.URL.Query().Get("peer")
	if recordID == "" || peer == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("recordId and peer are required"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := s.Follows.Unfollow(ctx, recordID, peer)
	var partial *services.PartialDeleteError
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotFollowing):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Following record not found"))
		return
	case errors.Is(err, services.ErrPeerMismatch):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Following record is not addressed to peer"))
		return
	case errors.As(err, &partial):
		glog.Warningf("[Unfollow] did=%s %v", s.DID, partial)
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Unfollow only partially applied, retry to finish"))
		return
	default:
		writeStoreError(w, "Unfollow", s.DID, err, "Failed to unfollow")
		return
	}
	writeJSON(w, http.StatusOK, models.NewInfoResponse("Unfollowed"))
}

func (h *GraphHandler) GetPeer(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	peer := chi.URLParam(r, "did")
	if peer == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing did"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rel, err := s.Follows.Relationship(ctx, peer)
	if err != nil {
		writeStoreError(w, "GetPeer", s.DID, err, "Failed to load relationship")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(rel))
}
