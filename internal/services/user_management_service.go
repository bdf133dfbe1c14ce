package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"greenia/internal/interfaces"
	"greenia/internal/metrics"
	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/validation"
)

// UserManagementService lets an administrator provision the users that count
// against the company's licenses.
type UserManagementService struct {
	users  repository.UserRepository
	admins repository.AdminRepository
	mailer EmailSender
}

func NewUserManagementService(users repository.UserRepository, admins repository.AdminRepository, mailer EmailSender) *UserManagementService {
	return &UserManagementService{users: users, admins: admins, mailer: mailer}
}

func (s *UserManagementService) ListUsers(ctx context.Context, adminID string) ([]models.User, error) {
	return s.users.ListByAdmin(ctx, adminID)
}

func (s *UserManagementService) GetUser(ctx context.Context, adminID, userID string) (*models.User, error) {
	return s.users.GetForAdmin(ctx, adminID, userID)
}

func (s *UserManagementService) LicenseUsage(ctx context.Context, adminID string) (*models.LicenseUsage, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	active, err := s.users.CountActiveByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	available := admin.LicenseCount - active
	if available < 0 {
		available = 0
	}
	return &models.LicenseUsage{LicenseCount: admin.LicenseCount, ActiveUsers: active, Available: available}, nil
}

// checkLicense returns *interfaces.LicenseLimitError when no license is free.
func (s *UserManagementService) checkLicense(ctx context.Context, adminID string) error {
	usage, err := s.LicenseUsage(ctx, adminID)
	if err != nil {
		return err
	}
	if usage.Available <= 0 {
		return &interfaces.LicenseLimitError{
			AdminID:      adminID,
			LicenseCount: usage.LicenseCount,
			ActiveUsers:  usage.ActiveUsers,
		}
	}
	return nil
}

// CreateUser checks the license cap before validating or inserting anything.
func (s *UserManagementService) CreateUser(ctx context.Context, adminID string, req models.CreateUserRequest) (*models.User, error) {
	if err := s.checkLicense(ctx, adminID); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := emailAvailable(ctx, s.admins, s.users, email, ""); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		AdminID:      adminID,
		Name:         strings.TrimSpace(req.Name),
		TaxID:        validation.NormalizeRUT(req.TaxID),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.UsersProvisionedTotal.Inc()

	subject, body := welcomeUserMail(u.Name, u.Email, req.Password)
	if err := s.mailer.Send(u.Email, subject, body); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to send welcome mail")
	}
	log.Info().Str("admin_id", adminID).Str("user_id", u.ID).Msg("User created")
	return u, nil
}

// UpdateUser applies the fields present in req. Reactivating an inactive user
// needs a free license.
func (s *UserManagementService) UpdateUser(ctx context.Context, adminID, userID string, req models.UpdateUserRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.users.GetForAdmin(ctx, adminID, userID)
	if err != nil {
		return nil, err
	}

	changes := models.UserChanges{
		Name:        trimmed(req.Name),
		PhoneNumber: trimmed(req.PhoneNumber),
		Active:      req.Active,
	}
	if req.TaxID != nil {
		rut := validation.NormalizeRUT(*req.TaxID)
		changes.TaxID = &rut
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := emailAvailable(ctx, s.admins, s.users, email, userID); err != nil {
			return nil, err
		}
		changes.Email = &email
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}
	if req.Active != nil && *req.Active && !current.Active {
		if err := s.checkLicense(ctx, adminID); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, adminID, userID, changes); err != nil {
		return nil, err
	}
	return s.users.GetForAdmin(ctx, adminID, userID)
}

func (s *UserManagementService) SetUserStatus(ctx context.Context, adminID, userID string, active bool) (*models.User, error) {
	return s.UpdateUser(ctx, adminID, userID, models.UpdateUserRequest{Active: &active})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
