package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"greenia/internal/metrics"
	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/validation"
)

var (
	ErrAccountNotFound   = errors.New("no account registered with that email")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrMailNotSent       = errors.New("reset mail could not be sent")
)

// RecoveryService runs the forgot-password flow: a single-use random token is
// mailed as a link and only its sha256 is stored.
type RecoveryService struct {
	admins  repository.AdminRepository
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	mailer  EmailSender
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewRecoveryService(admins repository.AdminRepository, users repository.UserRepository, resets repository.PasswordResetRepository, mailer EmailSender, baseURL string, ttl time.Duration) *RecoveryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RecoveryService{
		admins:  admins,
		users:   users,
		resets:  resets,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RequestReset stores a token for the account owning email and mails the link.
func (s *RecoveryService) RequestReset(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	email, role, err := s.lookup(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("request", "unknown_email").Inc()
		}
		return err
	}

	raw, hash, err := generateResetToken()
	if err != nil {
		return err
	}
	now := s.now()
	token := &models.PasswordResetToken{
		ID:          uuid.NewString(),
		TokenHash:   hash,
		Email:       email,
		AccountType: role,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	subject, body := resetMail(s.resetLink(raw), s.ttl)
	if err := s.mailer.Send(email, subject, body); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", "mail_failed").Inc()
		log.Error().Err(err).Str("token_id", token.ID).Msg("Failed to send reset mail")
		return fmt.Errorf("%w: %v", ErrMailNotSent, err)
	}
	metrics.PasswordResetsTotal.WithLabelValues("request", "ok").Inc()
	return nil
}

// VerifyToken loads a usable token. Absent, used and expired tokens are indistinguishable.
func (s *RecoveryService) VerifyToken(ctx context.Context, raw string) (*models.PasswordResetToken, error) {
	if raw == "" {
		return nil, ErrInvalidResetToken
	}
	token, err := s.resets.GetByTokenHash(ctx, hashToken(raw))
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		return nil, ErrInvalidResetToken
	}
	if err != nil {
		return nil, err
	}
	if !token.Usable(s.now()) {
		return nil, ErrInvalidResetToken
	}
	return token, nil
}

// ResetPassword sets the new password and consumes the token in one transaction.
func (s *RecoveryService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	token, err := s.VerifyToken(ctx, req.Token)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "invalid_token").Inc()
		return err
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = s.resets.Redeem(ctx, token, hash, s.now())
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		// consumed concurrently
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("redeem reset token: %w", err)
	}
	metrics.PasswordResetsTotal.WithLabelValues("reset", "ok").Inc()
	log.Info().Str("token_id", token.ID).Str("account_type", string(token.AccountType)).Msg("Password reset")
	return nil
}

func (s *RecoveryService) lookup(ctx context.Context, email string) (string, models.Role, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return admin.Email, models.RoleAdmin, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return "", "", err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user.Email, models.RoleUser, nil
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", "", ErrAccountNotFound
	}
	return "", "", err
}

func (s *RecoveryService) resetLink(raw string) string {
	return s.baseURL + "/?reset_token=" + url.QueryEscape(raw)
}

func generateResetToken() (rawToken string, tokenHash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	rawToken = hex.EncodeToString(b)
	return rawToken, hashToken(rawToken), nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
