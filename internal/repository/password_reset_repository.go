package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenia/internal/db"
	"greenia/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// Redeem sets the new password hash on the token's account and marks the token
	// used, in one transaction.
	Redeem(ctx context.Context, token *models.PasswordResetToken, passwordHash string, usedAt time.Time) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, token_hash, email, account_type, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query, token.ID, token.TokenHash, token.Email,
		string(token.AccountType), token.ExpiresAt).Scan(&token.CreatedAt)
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, token_hash, email, account_type, expires_at, used, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`

	var t models.PasswordResetToken
	var accountType string
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&t.ID, &t.TokenHash, &t.Email, &accountType, &t.ExpiresAt, &t.Used, &usedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, ErrResetTokenNotFound)
	}
	t.AccountType = models.Role(accountType)
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}

func (r *passwordResetRepository) Redeem(ctx context.Context, token *models.PasswordResetToken, passwordHash string, usedAt time.Time) error {
	var (
		update   string
		notFound error
	)
	switch token.AccountType {
	case models.RoleAdmin:
		update = `UPDATE administrators SET password_hash = $1, updated_at = NOW() WHERE LOWER(email) = LOWER($2)`
		notFound = ErrAdminNotFound
	case models.RoleUser:
		update = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE LOWER(email) = LOWER($2)`
		notFound = ErrUserNotFound
	default:
		return fmt.Errorf("unknown account type %q", token.AccountType)
	}

	return db.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, update, passwordHash, token.Email)
		if err != nil {
			return err
		}
		if err := affectedOne(res, notFound); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE password_reset_tokens SET used = TRUE, used_at = $1 WHERE id = $2 AND used = FALSE`,
			usedAt, token.ID)
		if err != nil {
			return err
		}
		return affectedOne(res, ErrResetTokenNotFound)
	})
}
