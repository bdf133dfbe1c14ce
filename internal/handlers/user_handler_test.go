package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"greenia/internal/models"
)

const userByID = `SELECT .+ FROM users WHERE id = \$1`

func TestUserMe(t *testing.T) {
	db, mock := newMock(t)
	h := NewUserHandler(db, testConfig(), &recordingMailer{})

	mock.ExpectQuery(userByID).WithArgs("u1").
		WillReturnRows(userRow("u1", "a1", "luis@example.com", hashOf(t, "secret123"), true))

	w := httptest.NewRecorder()
	h.Me(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["email"] != "luis@example.com" {
		t.Fatalf("unexpected body %v", resp)
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	expectationsMet(t, mock)
}

func TestUserMeWithoutSession(t *testing.T) {
	db, mock := newMock(t)
	h := NewUserHandler(db, testConfig(), &recordingMailer{})

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	expectationsMet(t, mock)
}

func TestUserMeNotFound(t *testing.T) {
	db, mock := newMock(t)
	h := NewUserHandler(db, testConfig(), &recordingMailer{})

	mock.ExpectQuery(userByID).WithArgs("gone").WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	h.Me(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), "gone", models.RoleUser, "a1"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	expectationsMet(t, mock)
}

func TestUserHome(t *testing.T) {
	db, mock := newMock(t)
	h := NewUserHandler(db, testConfig(), &recordingMailer{})

	mock.ExpectQuery(userByID).WithArgs("u1").
		WillReturnRows(userRow("u1", "a1", "luis@example.com", hashOf(t, "secret123"), true))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT batch_id\)`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"recognitions", "bottles", "co2"}).AddRow(7, 64, 32.0))
	mock.ExpectQuery(`FROM recognitions r\s+JOIN plastic_types p`).WithArgs("u1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_id", "plastic_type_id", "code", "name", "quantity", "weight",
			"co2", "image_key", "user_id", "admin_id", "recognized_at"}))

	w := httptest.NewRecorder()
	h.Home(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/me/home", nil), "u1", models.RoleUser, "a1"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	stats, ok := decodeBody(t, w)["stats"].(map[string]any)
	if !ok {
		t.Fatalf("missing stats")
	}
	if stats["level"] != "Intermedio" || stats["bottles"] != float64(64) {
		t.Fatalf("unexpected stats %v", stats)
	}
	expectationsMet(t, mock)
}
