package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/middleware"
	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

type SessionHandler struct {
	agents        *services.AgentService
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewSessionHandler(agents *services.AgentService, jwtSecret string, jwtExpiration time.Duration) *SessionHandler {
	return &SessionHandler{
		agents:        agents,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	agent, err := h.agents.Register(&req)
	if err != nil {
		if err == services.ErrAgentExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("DID already registered"))
			return
		}
		glog.Errorf("[Register] did=%s error=%v", req.DID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to register agent"))
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, agent.DID, h.jwtExpiration)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	glog.Infof("[Register] did=%s", agent.DID)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.SessionResponse{
		Token: token,
		Agent: *agent,
	}))
}

func (h *SessionHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	agent, err := h.agents.Unlock(&req)
	if err != nil {
		if err == services.ErrAgentNotFound || err == services.ErrInvalidPassphrase {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid DID or passphrase"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Unlock failed"))
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, agent.DID, h.jwtExpiration)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.SessionResponse{
		Token: token,
		Agent: *agent,
	}))
}
