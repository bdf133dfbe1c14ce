package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"greenia/internal/config"
	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/services"
)

// AdminHandler serves the administrator's profile and the users they manage.
type AdminHandler struct {
	accounts *services.AccountService
	users    *services.UserManagementService
}

func NewAdminHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *AdminHandler {
	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	return &AdminHandler{
		accounts: services.NewAccountService(admins, users, mailer, cfg.DefaultLicenseCount),
		users:    services.NewUserManagementService(users, admins, mailer),
	}
}

// GetProfile
// @Tags Admin
// @Summary Get administrator profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.AdminProfile
// @Router /api/v1/admin/profile [get]
func (h *AdminHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	profile, err := h.accounts.AdminProfile(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile
// @Tags Admin
// @Summary Update administrator contact information
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateAdminProfileRequest true "Contact fields"
// @Success 200 {object} services.AdminProfile
// @Router /api/v1/admin/profile [put]
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.UpdateAdminProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PhoneNumber == nil && req.Email == nil && req.Address == nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "No fields to update")
		return
	}
	profile, err := h.accounts.UpdateAdminProfile(r.Context(), sess.ID, req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ChangePassword
// @Tags Admin
// @Summary Change administrator password
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/profile/password [put]
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	changePassword(w, r, h.accounts)
}

// License
// @Tags Admin
// @Summary License usage
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.LicenseUsage
// @Router /api/v1/admin/license [get]
func (h *AdminHandler) License(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	usage, err := h.users.LicenseUsage(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load license usage")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// ListUsers
// @Tags Admin Users
// @Summary List users of the administrator
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	users, err := h.users.ListUsers(r.Context(), sess.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser
// @Tags Admin Users
// @Summary Create user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.CreateUser(r.Context(), sess.ID, req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser
// @Tags Admin Users
// @Summary Get user
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser
// @Tags Admin Users
// @Summary Update user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Router /api/v1/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Email == nil && req.TaxID == nil && req.PhoneNumber == nil &&
		req.Password == nil && req.Active == nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "No fields to update")
		return
	}
	user, err := h.users.UpdateUser(r.Context(), sess.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetUserStatus
// @Tags Admin Users
// @Summary Activate or deactivate user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.SetUserStatusRequest true "Status"
// @Success 200 {object} models.User
// @Router /api/v1/admin/users/{id}/status [patch]
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.SetUserStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "active is required")
		return
	}
	user, err := h.users.SetUserStatus(r.Context(), sess.ID, chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update user status")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func changePassword(w http.ResponseWriter, r *http.Request, accounts *services.AccountService) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := accounts.ChangePassword(r.Context(), *sess, req); err != nil {
		writeServiceError(w, r, err, "Failed to change password")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Password updated")
}
