package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"greenia/internal/config"
	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	recovery *services.RecoveryService
	sessions *services.SessionIssuer
	cfg      *config.Config
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender, sessions *services.SessionIssuer) *AuthHandler {
	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	return &AuthHandler{
		accounts: services.NewAccountService(admins, users, mailer, cfg.DefaultLicenseCount),
		recovery: services.NewRecoveryService(admins, users, repository.NewPasswordResetRepository(db),
			mailer, cfg.ResetBaseURL, cfg.ResetTokenTTL),
		sessions: sessions,
		cfg:      cfg,
	}
}

// Register creates a company and its administrator account.
// @Tags Auth
// @Summary Register company administrator
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Company and administrator data"
// @Success 201 {object} models.Administrator
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	admin, err := h.accounts.RegisterAdmin(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to register company")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

// Login authenticates an administrator or user.
// @Tags Auth
// @Summary Login
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.accounts.Authenticate(r.Context(), req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSONErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	case errors.Is(err, services.ErrAccountInactive):
		if h.cfg.AuthVerboseErrors {
			writeJSONErrorResponse(w, http.StatusForbidden, "account_inactive", "Account is inactive, contact your administrator")
			return
		}
		writeJSONErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	case err != nil:
		writeServiceError(w, r, err, "Failed to login")
		return
	}

	token, sess, err := h.sessions.Issue(*p)
	if err != nil {
		writeServiceError(w, r, err, "Failed to login")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.sessions.TTL().Seconds()),
		Account:     sess.Principal,
	})
}

// Logout revokes the current access token.
// @Tags Auth
// @Summary Logout
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Revoke(r.Context(), sess); err != nil {
		writeServiceError(w, r, err, "Failed to logout")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Logged out")
}

// ForgotPassword mails a password reset link.
// @Tags Auth
// @Summary Request password reset
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.recovery.RequestReset(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "Failed to start password recovery")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "A recovery link was sent to your email",
	})
}

// VerifyResetToken checks a reset token before the new password form is shown.
// @Tags Auth
// @Summary Verify reset token
// @Produce json
// @Param token query string true "Reset token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/auth/reset-password/verify [get]
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.recovery.VerifyToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to verify token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"expires_at": token.ExpiresAt,
	})
}

// ResetPassword sets a new password using a reset token.
// @Tags Auth
// @Summary Reset password
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.recovery.ResetPassword(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "Failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Password reset successful",
	})
}
