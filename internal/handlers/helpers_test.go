package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"greenia/internal/config"
	"greenia/internal/middleware"
	"greenia/internal/models"
)

var (
	adminCols = []string{"id", "company_id", "company_name", "name", "tax_id", "email", "phone_number", "address",
		"password_hash", "license_count", "active", "created_at", "updated_at"}
	userCols = []string{"id", "admin_id", "name", "tax_id", "email", "phone_number", "password_hash", "active",
		"created_at", "updated_at"}
)

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	body []string
}

func (m *recordingMailer) Send(to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "dev",
		SessionTTL:          time.Hour,
		ResetBaseURL:        "http://localhost:8501",
		ResetTokenTTL:       24 * time.Hour,
		DefaultLicenseCount: 10,
		UnitWeightKg:        0.02,
		MaxUploadBytes:      1 << 20,
	}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func adminRow(id, email, hash string, licenses int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(adminCols).AddRow(id, "c1", "Reciclajes del Sur", "Ana Rojas", "123456785", email,
		"912345678", "Av. Principal 123", hash, licenses, true, now, now)
}

func userRow(id, adminID, email, hash string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userCols).AddRow(id, adminID, "Luis Perez", "123456785", email, "912345678", hash, active, now, now)
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, id string, role models.Role, adminID string) *http.Request {
	sess := &models.Session{
		Principal: models.Principal{ID: id, Role: role, AdminID: adminID},
		TokenID:   "tok-" + id,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(middleware.WithSession(context.Background(), sess))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, w.Body.String())
	}
	return resp
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
