package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"greenia/internal/metrics"
	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrForbidden          = errors.New("operation not allowed for this account")
)

// AccountService covers registration, login and the self-service profile of both roles.
type AccountService struct {
	admins         repository.AdminRepository
	users          repository.UserRepository
	mailer         EmailSender
	defaultLicense int
}

func NewAccountService(admins repository.AdminRepository, users repository.UserRepository, mailer EmailSender, defaultLicense int) *AccountService {
	if defaultLicense <= 0 {
		defaultLicense = 10
	}
	return &AccountService{
		admins:         admins,
		users:          users,
		mailer:         mailer,
		defaultLicense: defaultLicense,
	}
}

// RegisterAdmin creates a company together with its first administrator.
func (s *AccountService) RegisterAdmin(ctx context.Context, req models.RegisterRequest) (*models.Administrator, error) {
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

	company := &models.Company{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.CompanyName),
		TaxID:   validation.NormalizeRUT(req.CompanyTaxID),
		Address: strings.TrimSpace(req.Address),
	}
	admin := &models.Administrator{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		TaxID:        validation.NormalizeRUT(req.TaxID),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Address:      company.Address,
		PasswordHash: hash,
		LicenseCount: s.defaultLicense,
		Active:       true,
	}
	if err := s.admins.CreateWithCompany(ctx, company, admin); err != nil {
		return nil, fmt.Errorf("register administrator: %w", err)
	}

	subject, body := registrationMail(admin.Name, company.Name, admin.Email)
	if err := s.mailer.Send(admin.Email, subject, body); err != nil {
		log.Warn().Err(err).Str("admin_id", admin.ID).Msg("Failed to send registration mail")
	}
	log.Info().Str("admin_id", admin.ID).Str("company_id", company.ID).Msg("Company registered")
	return admin, nil
}

// Authenticate resolves email+password to a principal, trying administrators first.
func (s *AccountService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.Principal, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var (
		p      models.Principal
		hash   string
		active bool
	)
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		p = models.Principal{ID: admin.ID, Role: models.RoleAdmin, AdminID: admin.ID, Name: admin.Name, Email: admin.Email}
		hash, active = admin.PasswordHash, admin.Active
	case errors.Is(err, repository.ErrAdminNotFound):
		user, err := s.users.GetByEmail(ctx, req.Email)
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown").Inc()
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		p = models.Principal{ID: user.ID, Role: models.RoleUser, AdminID: user.AdminID, Name: user.Name, Email: user.Email}
		hash, active = user.PasswordHash, user.Active
	default:
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		metrics.LoginsTotal.WithLabelValues("wrong_password").Inc()
		return nil, ErrInvalidCredentials
	}
	if !active {
		metrics.LoginsTotal.WithLabelValues("inactive").Inc()
		return nil, ErrAccountInactive
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &p, nil
}

type AdminProfile struct {
	models.Administrator
	ActiveUsers int `json:"active_users"`
}

func (s *AccountService) AdminProfile(ctx context.Context, adminID string) (*AdminProfile, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	n, err := s.users.CountActiveByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return &AdminProfile{Administrator: *admin, ActiveUsers: n}, nil
}

// UpdateAdminProfile overwrites the contact fields present in req.
func (s *AccountService) UpdateAdminProfile(ctx context.Context, adminID string, req models.UpdateAdminProfileRequest) (*AdminProfile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := emailAvailable(ctx, s.admins, s.users, email, adminID); err != nil {
			return nil, err
		}
		req.Email = &email
	}
	if err := s.admins.UpdateContact(ctx, adminID, &req); err != nil {
		return nil, err
	}
	return s.AdminProfile(ctx, adminID)
}

// ChangePassword verifies the current password of the session's account and stores the new one.
func (s *AccountService) ChangePassword(ctx context.Context, sess models.Session, req models.ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	var current string
	switch sess.Role {
	case models.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, sess.ID)
		if err != nil {
			return err
		}
		current = admin.PasswordHash
	case models.RoleUser:
		user, err := s.users.GetByID(ctx, sess.ID)
		if err != nil {
			return err
		}
		current = user.PasswordHash
	default:
		return ErrForbidden
	}

	if bcrypt.CompareHashAndPassword([]byte(current), []byte(req.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if sess.Role == models.RoleAdmin {
		return s.admins.UpdatePasswordHash(ctx, sess.ID, hash)
	}
	return s.users.UpdatePasswordHash(ctx, sess.ID, hash)
}

func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// emailAvailable fails with ErrEmailTaken when email belongs to any account other than selfID.
func emailAvailable(ctx context.Context, admins repository.AdminRepository, users repository.UserRepository, email, selfID string) error {
	admin, err := admins.GetByEmail(ctx, email)
	if err == nil && admin.ID != selfID {
		return ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrAdminNotFound) {
		return err
	}
	user, err := users.GetByEmail(ctx, email)
	if err == nil && user.ID != selfID {
		return ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
