package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"greenia/internal/detection"
	"greenia/internal/interfaces"
	"greenia/internal/recognition"
	"greenia/internal/repository"
	"greenia/internal/services"
	"greenia/internal/validation"
)

// writeServiceError maps domain errors to status codes. Anything unrecognized is
// logged and answered with a generic 500 carrying fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		vErr     *validation.Error
		limitErr *interfaces.LicenseLimitError
	)
	switch {
	case errors.As(err, &vErr):
		writeValidationError(w, vErr)
	case errors.As(err, &limitErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":         "license_limit_reached",
			"message":       "License limit reached, deactivate a user or request more licenses",
			"license_count": limitErr.LicenseCount,
			"active_users":  limitErr.ActiveUsers,
		})
	case errors.Is(err, services.ErrEmailTaken):
		writeJSONErrorResponse(w, http.StatusConflict, "email_taken", "Email is already registered")
	case errors.Is(err, repository.ErrDuplicate):
		writeJSONErrorResponse(w, http.StatusConflict, "conflict", "A record with the same unique data already exists")
	case errors.Is(err, repository.ErrUserNotFound):
		writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, repository.ErrAdminNotFound):
		writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Administrator not found")
	case errors.Is(err, services.ErrWrongPassword):
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_password", "Current password is incorrect")
	case errors.Is(err, services.ErrAccountNotFound):
		writeJSONErrorResponse(w, http.StatusNotFound, "account_not_found", "No account is registered with that email")
	case errors.Is(err, services.ErrInvalidResetToken):
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_token", "Invalid or expired token")
	case errors.Is(err, services.ErrMailNotSent):
		writeJSONErrorResponse(w, http.StatusBadGateway, "mail_failed", "The recovery email could not be sent")
	case errors.Is(err, services.ErrForbidden), errors.Is(err, recognition.ErrNotAllowed):
		writeJSONErrorResponse(w, http.StatusForbidden, "forbidden", "Operation not allowed for this account")
	case errors.Is(err, recognition.ErrAccountInactive):
		writeJSONErrorResponse(w, http.StatusForbidden, "account_inactive", "Account is inactive, contact your administrator")
	case errors.Is(err, detection.ErrImageTooLarge):
		writeJSONErrorResponse(w, http.StatusRequestEntityTooLarge, "image_too_large", "Image exceeds the maximum upload size")
	case errors.Is(err, detection.ErrInvalidImage):
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_image", "Unsupported or corrupt image")
	case errors.Is(err, detection.ErrNotConfigured):
		writeJSONErrorResponse(w, http.StatusServiceUnavailable, "detection_unavailable", "Detection service is not configured")
	case errors.Is(err, recognition.ErrNoResult):
		writeJSONErrorResponse(w, http.StatusBadGateway, "no_result", "The detection service returned no result")
	case errors.Is(err, recognition.ErrNotPersisted):
		writeJSONErrorResponse(w, http.StatusInternalServerError, "not_persisted", "The recognition could not be saved")
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg(fallback)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
