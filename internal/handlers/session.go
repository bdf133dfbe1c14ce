package handlers

import (
	"net/http"

	"greenia/internal/middleware"
	"greenia/internal/models"
)

func currentSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeJSONErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
	}
	return sess, true
}
