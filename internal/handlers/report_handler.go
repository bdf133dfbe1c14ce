package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/services"
)

// ReportHandler serves the administrator reports. Ranges come from ?from= and
// ?to= as inclusive YYYY-MM-DD dates.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(db *sql.DB) *ReportHandler {
	return &ReportHandler{
		reports: services.NewReportService(repository.NewRecognitionRepository(db), repository.NewUserRepository(db)),
	}
}

func dateRange(w http.ResponseWriter, r *http.Request) (models.DateRange, bool) {
	q := r.URL.Query()
	rng, err := services.ParseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(w, r, err, "Invalid date range")
		return rng, false
	}
	return rng, true
}

// Activity
// @Tags Reports
// @Summary Activity per user
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {array} models.UserActivity
// @Router /api/v1/admin/reports/activity [get]
func (h *ReportHandler) Activity(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}
	rows, err := h.reports.Activity(r.Context(), sess.ID, rng)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build activity report")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Impact
// @Tags Reports
// @Summary Environmental impact per plastic type
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {array} models.PlasticImpact
// @Router /api/v1/admin/reports/impact [get]
func (h *ReportHandler) Impact(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}
	rows, err := h.reports.Impact(r.Context(), sess.ID, rng)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build impact report")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Summary
// @Tags Reports
// @Summary General summary with daily trend
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {object} models.SummaryReport
// @Router /api/v1/admin/reports/summary [get]
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}
	summary, err := h.reports.Summary(r.Context(), sess.ID, rng)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build summary report")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Dashboard
// @Tags Reports
// @Summary Dashboard totals, goals and monthly trend
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Dashboard
// @Router /api/v1/admin/dashboard [get]
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	d, err := h.reports.Dashboard(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ExportActivity
// @Tags Reports
// @Summary Export activity report
// @Security BearerAuth
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {file} file
// @Router /api/v1/admin/reports/activity/export [get]
func (h *ReportHandler) ExportActivity(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "actividad", func(sessID string, rng models.DateRange) (services.Table, error) {
		rows, err := h.reports.Activity(r.Context(), sessID, rng)
		return services.ActivityTable(rows), err
	})
}

// ExportImpact
// @Tags Reports
// @Summary Export impact report
// @Security BearerAuth
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {file} file
// @Router /api/v1/admin/reports/impact/export [get]
func (h *ReportHandler) ExportImpact(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "impacto", func(sessID string, rng models.DateRange) (services.Table, error) {
		rows, err := h.reports.Impact(r.Context(), sessID, rng)
		return services.ImpactTable(rows), err
	})
}

func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, name string, build func(string, models.DateRange) (services.Table, error)) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	contentType, ext, err := services.ContentType(format)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_format", "format must be csv or xlsx")
		return
	}
	rng, ok := dateRange(w, r)
	if !ok {
		return
	}
	table, err := build(sess.ID, rng)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build report")
		return
	}

	var buf bytes.Buffer
	if err := services.Export(&buf, ext, table); err != nil {
		writeServiceError(w, r, err, "Failed to export report")
		return
	}
	filename := fmt.Sprintf("reporte_%s_%s.%s", name, time.Now().UTC().Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
