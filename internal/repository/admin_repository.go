package repository

import (
	"context"
	"database/sql"
	"fmt"

	"greenia/internal/db"
	"greenia/internal/models"
)

type AdminRepository interface {
	CreateWithCompany(ctx context.Context, company *models.Company, admin *models.Administrator) error
	GetByID(ctx context.Context, id string) (*models.Administrator, error)
	GetByEmail(ctx context.Context, email string) (*models.Administrator, error)
	UpdateContact(ctx context.Context, id string, req *models.UpdateAdminProfileRequest) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

const adminColumns = `
	a.id, a.company_id, c.name, a.name, a.tax_id, a.email, a.phone_number, a.address,
	a.password_hash, a.license_count, a.active, a.created_at, a.updated_at`

// CreateWithCompany inserts the company and its first administrator atomically.
func (r *adminRepository) CreateWithCompany(ctx context.Context, company *models.Company, admin *models.Administrator) error {
	return db.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO companies (id, name, tax_id, address)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, company.ID, company.Name, company.TaxID, company.Address).Scan(&company.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert company: %w", mapError(err, err))
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO administrators (id, company_id, name, tax_id, email, phone_number, address, password_hash, license_count, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`, admin.ID, company.ID, admin.Name, admin.TaxID, admin.Email, admin.PhoneNumber, admin.Address,
			admin.PasswordHash, admin.LicenseCount, admin.Active).Scan(&admin.CreatedAt, &admin.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert administrator: %w", mapError(err, err))
		}
		admin.CompanyID = company.ID
		admin.CompanyName = company.Name
		return nil
	})
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*models.Administrator, error) {
	query := `SELECT` + adminColumns + `
		FROM administrators a
		JOIN companies c ON c.id = a.company_id
		WHERE a.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Administrator, error) {
	query := `SELECT` + adminColumns + `
		FROM administrators a
		JOIN companies c ON c.id = a.company_id
		WHERE LOWER(a.email) = LOWER($1)`
	return r.getOne(ctx, query, email)
}

func (r *adminRepository) getOne(ctx context.Context, query string, arg any) (*models.Administrator, error) {
	var a models.Administrator
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.CompanyID, &a.CompanyName, &a.Name, &a.TaxID, &a.Email, &a.PhoneNumber, &a.Address,
		&a.PasswordHash, &a.LicenseCount, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, ErrAdminNotFound)
	}
	return &a, nil
}

func (r *adminRepository) UpdateContact(ctx context.Context, id string, req *models.UpdateAdminProfileRequest) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE administrators
		SET phone_number = COALESCE($1, phone_number),
			email = COALESCE($2, email),
			address = COALESCE($3, address),
			updated_at = NOW()
		WHERE id = $4
	`, req.PhoneNumber, req.Email, req.Address, id)
	if err != nil {
		return mapError(err, ErrAdminNotFound)
	}
	return affectedOne(res, ErrAdminNotFound)
}

func (r *adminRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE administrators SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return err
	}
	return affectedOne(res, ErrAdminNotFound)
}
