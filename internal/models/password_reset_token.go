package models

import "time"

// PasswordResetToken stores only the sha256 of the secret that was mailed out.
type PasswordResetToken struct {
	ID          string
	TokenHash   string
	Email       string
	AccountType Role
	ExpiresAt   time.Time
	Used        bool
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t != nil && !t.Used && now.Before(t.ExpiresAt)
}
