package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/middleware"
	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

const requestTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

// sessionFor opens the caller's session, or writes 401 and returns nil.
func sessionFor(w http.ResponseWriter, r *http.Request, sessions *services.SessionFactory) *services.Session {
	did := middleware.GetDID(r.Context())
	if did == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return nil
	}
	return sessions.For(did)
}

// writeStoreError reports a failure that no sentinel of the calling handler
// explains. Store rejections keep their client-error codes; anything else is
// the server's fault.
func writeStoreError(w http.ResponseWriter, op, did string, err error, message string) {
	glog.Errorf("[%s] did=%s error=%v", op, did, err)

	var se *services.StatusError
	if errors.As(err, &se) && se.Status.Code >= 400 && se.Status.Code < 500 {
		writeJSON(w, se.Status.Code, models.NewErrorResponse(message+": "+se.Status.Detail))
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusGatewayTimeout, models.NewErrorResponse(message+": store timed out"))
		return
	}
	writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(message))
}
