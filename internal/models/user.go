package models

import "time"

// Role identifies which account table a principal lives in.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type Administrator struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	CompanyName  string    `json:"company_name,omitempty"`
	Name         string    `json:"name"`
	TaxID        string    `json:"tax_id"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	LicenseCount int       `json:"license_count"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	AdminID      string    `json:"admin_id"`
	Name         string    `json:"name"`
	TaxID        string    `json:"tax_id"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserChanges lists the columns an administrator may overwrite; nil leaves a column as is.
type UserChanges struct {
	Name         *string
	Email        *string
	TaxID        *string
	PhoneNumber  *string
	PasswordHash *string
	Active       *bool
}

// Principal is the authenticated identity behind a session.
type Principal struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	AdminID string `json:"admin_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Session is the request-scoped identity decoded from an access token.
type Session struct {
	Principal
	TokenID   string
	ExpiresAt time.Time
}

type LicenseUsage struct {
	LicenseCount int `json:"license_count"`
	ActiveUsers  int `json:"active_users"`
	Available    int `json:"available"`
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=100"`
	CompanyName     string `json:"company_name" validate:"required,min=3,max=150"`
	CompanyTaxID    string `json:"company_tax_id" validate:"required,company_rut"`
	TaxID           string `json:"tax_id" validate:"required,rut"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Address         string `json:"address" validate:"required,min=5,max=255"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	Account     Principal `json:"account"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type UpdateAdminProfileRequest struct {
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string `json:"address,omitempty" validate:"omitempty,min=5,max=255"`
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,person_name,max=100"`
	Email       string `json:"email" validate:"required,email"`
	TaxID       string `json:"tax_id" validate:"required,rut"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,phone"`
	Password    string `json:"password" validate:"required,alnum_password"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,person_name,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	TaxID       *string `json:"tax_id,omitempty" validate:"omitempty,rut"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Password    *string `json:"password,omitempty" validate:"omitempty,alnum_password"`
	Active      *bool   `json:"active,omitempty"`
}

type SetUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}
