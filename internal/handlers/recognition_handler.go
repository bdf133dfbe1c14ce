package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"greenia/internal/config"
	"greenia/internal/detection"
	"greenia/internal/interfaces"
	"greenia/internal/recognition"
	"greenia/internal/repository"
	"greenia/internal/services"
)

// multipart framing allowance on top of the image itself
const multipartOverhead = 512 << 10

type RecognitionHandler struct {
	svc      *recognition.Service
	reports  *services.ReportService
	maxBytes int64
}

func NewRecognitionHandler(db *sql.DB, cfg *config.Config, detector detection.Detector, images interfaces.ImageStore) *RecognitionHandler {
	recs := repository.NewRecognitionRepository(db)
	users := repository.NewUserRepository(db)
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &RecognitionHandler{
		svc: recognition.NewService(detector, repository.NewPlasticTypeRepository(db), recs, users, recognition.Options{
			UnitWeightKg: cfg.UnitWeightKg,
			Images:       images,
		}),
		reports:  services.NewReportService(recs, users),
		maxBytes: maxBytes,
	}
}

// Create runs one photo through detection and stores the result.
// @Tags Recognitions
// @Summary Recognize plastic containers in a photo
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Photo (jpeg, png or webp)"
// @Success 201 {object} recognition.Outcome
// @Success 200 {object} recognition.Outcome "Nothing detected"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Account inactive"
// @Failure 413 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/recognitions [post]
func (h *RecognitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONErrorResponse(w, http.StatusRequestEntityTooLarge, "image_too_large", "Image exceeds the maximum upload size")
			return
		}
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to read image")
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeJSONErrorResponse(w, http.StatusRequestEntityTooLarge, "image_too_large", "Image exceeds the maximum upload size")
		return
	}
	if len(data) == 0 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "image is empty")
		return
	}

	outcome, err := h.svc.Recognize(r.Context(), *sess, data)
	if err != nil {
		writeServiceError(w, r, err, "Failed to process image")
		return
	}
	status := http.StatusOK
	if outcome.Saved {
		status = http.StatusCreated
	}
	writeJSON(w, status, outcome)
}

// List returns the caller's recognitions, newest first.
// @Tags Recognitions
// @Summary Recognition history
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} models.PaginatedResponse
// @Router /api/v1/recognitions [get]
func (h *RecognitionHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	p, err := parsePaginationParams(r, 20, 100)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_pagination", "invalid pagination: "+err.Error())
		return
	}
	items, total, err := h.reports.UserRecognitions(r.Context(), sess.ID, p.limit, p.offset)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list recognitions")
		return
	}
	writePaginatedResponse(w, http.StatusOK, items, p.page, p.pageSize, total)
}
