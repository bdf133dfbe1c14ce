package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"greenia/internal/models"
	"greenia/internal/services"
)

const (
	adminByEmail = `FROM administrators a\s+JOIN companies c ON c.id = a.company_id\s+WHERE LOWER\(a.email\) = LOWER\(\$1\)`
	userByEmail  = `FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`
	tokenByHash  = `FROM password_reset_tokens\s+WHERE token_hash = \$1`
)

var tokenCols = []string{"id", "token_hash", "email", "account_type", "expires_at", "used", "used_at", "created_at"}

func newAuthHandler(t *testing.T, mailer services.EmailSender) (*AuthHandler, sqlmock.Sqlmock, *services.SessionIssuer) {
	t.Helper()
	db, mock := newMock(t)
	cfg := testConfig()
	sessions := services.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL, nil)
	return NewAuthHandler(db, cfg, mailer, sessions), mock, sessions
}

func registerPayload() map[string]any {
	return map[string]any{
		"name":             "Ana Rojas",
		"company_name":     "Reciclajes del Sur",
		"company_tax_id":   "76.123.456-0",
		"tax_id":           "12.345.678-5",
		"email":            "ana@example.com",
		"phone_number":     "+56 912345678",
		"address":          "Av. Principal 123",
		"password":         "secret123",
		"confirm_password": "secret123",
	}
}

func TestRegisterSuccess(t *testing.T) {
	mailer := &recordingMailer{}
	h, mock, _ := newAuthHandler(t, mailer)
	now := time.Now().UTC()

	mock.ExpectQuery(adminByEmail).WithArgs("ana@example.com").WillReturnRows(sqlmock.NewRows(adminCols))
	mock.ExpectQuery(userByEmail).WithArgs("ana@example.com").WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO companies").
		WithArgs(sqlmock.AnyArg(), "Reciclajes del Sur", "761234560", "Av. Principal 123").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery("INSERT INTO administrators").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["email"] != "ana@example.com" || resp["company_name"] != "Reciclajes del Sur" {
		t.Fatalf("unexpected body %v", resp)
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	if len(mailer.to) != 1 {
		t.Fatalf("expected registration mail, got %d", len(mailer.to))
	}
	expectationsMet(t, mock)
}

func TestRegisterValidationError(t *testing.T) {
	h, mock, _ := newAuthHandler(t, &recordingMailer{})
	payload := registerPayload()
	payload["company_tax_id"] = "12.345.678-5"
	payload["confirm_password"] = "different1"

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", payload))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	fields, ok := decodeBody(t, w)["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields in response")
	}
	for _, f := range []string{"company_tax_id", "confirm_password"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("expected %s in fields %v", f, fields)
		}
	}
	expectationsMet(t, mock)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, _ := newAuthHandler(t, &recordingMailer{})
	mock.ExpectQuery(adminByEmail).WillReturnRows(adminRow("a1", "ana@example.com", "x", 10))

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload()))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
	expectationsMet(t, mock)
}

func TestLoginAndLogout(t *testing.T) {
	h, mock, sessions := newAuthHandler(t, &recordingMailer{})
	mock.ExpectQuery(adminByEmail).WithArgs("ana@example.com").
		WillReturnRows(adminRow("a1", "ana@example.com", hashOf(t, "secret123"), 10))

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "ana@example.com", "password": "secret123"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	token, _ := resp["access_token"].(string)
	if token == "" || resp["token_type"] != "Bearer" || resp["expires_in"] != float64(3600) {
		t.Fatalf("unexpected login response %v", resp)
	}
	sess, err := sessions.Parse(context.Background(), token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if sess.Role != models.RoleAdmin || sess.AdminID != "a1" {
		t.Fatalf("unexpected session %+v", sess)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w = httptest.NewRecorder()
	h.Logout(w, withSession(req, "a1", models.RoleAdmin, "a1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout got %d", w.Code)
	}
	expectationsMet(t, mock)
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t, &recordingMailer{})
	mock.ExpectQuery(adminByEmail).WillReturnRows(sqlmock.NewRows(adminCols))
	mock.ExpectQuery(userByEmail).WillReturnRows(userRow("u1", "a1", "luis@example.com", hashOf(t, "abc12345"), true))

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "luis@example.com", "password": "nope"}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials")
	}
	expectationsMet(t, mock)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	mailer := &recordingMailer{}
	h, mock, _ := newAuthHandler(t, mailer)
	mock.ExpectQuery(adminByEmail).WillReturnRows(sqlmock.NewRows(adminCols))
	mock.ExpectQuery(userByEmail).WillReturnRows(sqlmock.NewRows(userCols))

	w := httptest.NewRecorder()
	h.ForgotPassword(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]any{"email": "ghost@example.com"}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	if len(mailer.to) != 0 {
		t.Fatalf("no mail expected for unknown email")
	}
	expectationsMet(t, mock)
}

func TestForgotPasswordMailsLink(t *testing.T) {
	mailer := &recordingMailer{}
	h, mock, _ := newAuthHandler(t, mailer)
	mock.ExpectQuery(adminByEmail).WillReturnRows(sqlmock.NewRows(adminCols))
	mock.ExpectQuery(userByEmail).WillReturnRows(userRow("u1", "a1", "luis@example.com", "x", true))
	mock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "luis@example.com", "user", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	w := httptest.NewRecorder()
	h.ForgotPassword(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]any{"email": "luis@example.com"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if len(mailer.body) != 1 || !strings.Contains(mailer.body[0], "http://localhost:8501/?reset_token=") {
		t.Fatalf("expected reset link mail, got %v", mailer.body)
	}
	if _, leaked := decodeBody(t, w)["token"]; leaked {
		t.Fatalf("token must only travel by mail")
	}
	expectationsMet(t, mock)
}

func TestVerifyResetTokenUsed(t *testing.T) {
	h, mock, _ := newAuthHandler(t, &recordingMailer{})
	raw := "abcd"
	sum := sha256.Sum256([]byte(raw))
	hash := hex.EncodeToString(sum[:])
	now := time.Now().UTC()
	mock.ExpectQuery(tokenByHash).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow("t1", hash, "luis@example.com", "user", now.Add(time.Hour), true, now, now))

	w := httptest.NewRecorder()
	h.VerifyResetToken(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/reset-password/verify?token="+raw, nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "invalid_token" {
		t.Fatalf("expected invalid_token")
	}
	expectationsMet(t, mock)
}

func TestResetPasswordSuccess(t *testing.T) {
	h, mock, _ := newAuthHandler(t, &recordingMailer{})
	raw := "abcd"
	sum := sha256.Sum256([]byte(raw))
	hash := hex.EncodeToString(sum[:])
	now := time.Now().UTC()

	mock.ExpectQuery(tokenByHash).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow("t1", hash, "luis@example.com", "user", now.Add(time.Hour), false, nil, now))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs(sqlmock.AnyArg(), "luis@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_reset_tokens SET used = TRUE`).
		WithArgs(sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payload := map[string]any{"token": raw, "new_password": "newpassword123", "confirm_password": "newpassword123"}
	w := httptest.NewRecorder()
	h.ResetPassword(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/reset-password", payload))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["ok"] != true {
		t.Fatalf("expected ok=true")
	}
	expectationsMet(t, mock)
}
