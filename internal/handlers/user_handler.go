package handlers

import (
	"database/sql"
	"net/http"

	"greenia/internal/config"
	"greenia/internal/repository"
	"greenia/internal/services"
)

// UserHandler serves the signed-in user's own profile and home screen.
type UserHandler struct {
	accounts *services.AccountService
	reports  *services.ReportService
}

func NewUserHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *UserHandler {
	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	return &UserHandler{
		accounts: services.NewAccountService(admins, users, mailer, cfg.DefaultLicenseCount),
		reports:  services.NewReportService(repository.NewRecognitionRepository(db), users),
	}
}

// Me
// @Tags Users
// @Summary Current user profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /api/v1/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	user, err := h.accounts.CurrentUser(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Home
// @Tags Users
// @Summary Stats, level and latest recognitions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserHome
// @Router /api/v1/me/home [get]
func (h *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	home, err := h.reports.UserHome(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load home")
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// ChangePassword
// @Tags Users
// @Summary Change own password
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/me/password [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	changePassword(w, r, h.accounts)
}
