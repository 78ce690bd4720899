package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

type ProfileHandler struct {
	sessions *services.SessionFactory
}

func NewProfileHandler(sessions *services.SessionFactory) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := s.Profiles.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		writeStoreError(w, "GetProfile", s.DID, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	var req models.UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(true); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := s.Profiles.CreateProfile(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrProfileExists) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Profile already exists"))
			return
		}
		writeStoreError(w, "CreateProfile", s.DID, err, "Failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	var req models.UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(false); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := s.Profiles.UpdateProfile(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		writeStoreError(w, "UpdateProfile", s.DID, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// ShareProfile pushes a new attribute selection to peers already followed.
func (h *ProfileHandler) ShareProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}

	var req models.ShareProfileRequest
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

	reports, err := s.Profiles.BroadcastSharedProfile(ctx, req.DIDs, req.SharedProfileAttributes)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Create a profile before sharing it"))
			return
		}
		writeStoreError(w, "ShareProfile", s.DID, err, "Failed to share profile")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(reports))
}
