package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPlasticTypeList(t *testing.T) {
	db, mock := newMock(t)
	h := NewPlasticTypeHandler(db)

	mock.ExpectQuery(`SELECT id, code, name, co2_per_unit_kg FROM plastic_types ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "co2_per_unit_kg"}).
			AddRow(1, "PET", "Tereftalato de polietileno", 0.5).
			AddRow(7, "OTHER", "Otros", 0.1))

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/plastic-types", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{`"code":"PET"`, `"recyclable":true`, `"full_name":"Tipo de plástico no identificado"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
	expectationsMet(t, mock)
}

func TestPlasticTypeListError(t *testing.T) {
	db, mock := newMock(t)
	h := NewPlasticTypeHandler(db)

	mock.ExpectQuery(`FROM plastic_types`).WillReturnError(errors.New("connection reset"))

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/plastic-types", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	expectationsMet(t, mock)
}
