package handlers

import (
	"database/sql"
	"net/http"

	"greenia/internal/models"
	"greenia/internal/recognition"
	"greenia/internal/repository"
)

type PlasticTypeHandler struct {
	repo repository.PlasticTypeRepository
}

func NewPlasticTypeHandler(db *sql.DB) *PlasticTypeHandler {
	return &PlasticTypeHandler{repo: repository.NewPlasticTypeRepository(db)}
}

type plasticTypeView struct {
	models.PlasticType
	Info recognition.BottleInfo `json:"info"`
}

// List returns the plastic type catalog with recycling guidance.
// @Tags Catalog
// @Summary List plastic types
// @Produce json
// @Success 200 {array} plasticTypeView
// @Router /api/v1/plastic-types [get]
func (h *PlasticTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list plastic types")
		return
	}
	out := make([]plasticTypeView, 0, len(types))
	for _, t := range types {
		out = append(out, plasticTypeView{PlasticType: t, Info: recognition.InfoFor(t.Code)})
	}
	writeJSON(w, http.StatusOK, out)
}
