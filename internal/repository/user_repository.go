package repository

import (
	"context"
	"database/sql"

	"greenia/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetForAdmin(ctx context.Context, adminID string, id string) (*models.User, error)
	ListByAdmin(ctx context.Context, adminID string) ([]models.User, error)
	CountActiveByAdmin(ctx context.Context, adminID string) (int, error)
	Update(ctx context.Context, adminID string, id string, changes models.UserChanges) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, admin_id, name, tax_id, email, phone_number, password_hash, active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.AdminID, &u.Name, &u.TaxID, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, admin_id, name, tax_id, email, phone_number, password_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.AdminID, user.Name, user.TaxID, user.Email,
		user.PhoneNumber, user.PasswordHash, user.Active).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapError(err, err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, &u); err != nil {
		return nil, mapError(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err := scanUser(row, &u); err != nil {
		return nil, mapError(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) GetForAdmin(ctx context.Context, adminID string, id string) (*models.User, error) {
	var u models.User
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND admin_id = $2`, id, adminID)
	if err := scanUser(row, &u); err != nil {
		return nil, mapError(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE admin_id = $1 ORDER BY name`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) CountActiveByAdmin(ctx context.Context, adminID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE admin_id = $1 AND active = TRUE`, adminID).Scan(&n)
	return n, err
}

func (r *userRepository) Update(ctx context.Context, adminID string, id string, c models.UserChanges) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = COALESCE($1, name),
			email = COALESCE($2, email),
			tax_id = COALESCE($3, tax_id),
			phone_number = COALESCE($4, phone_number),
			password_hash = COALESCE($5, password_hash),
			active = COALESCE($6, active),
			updated_at = NOW()
		WHERE id = $7 AND admin_id = $8
	`, c.Name, c.Email, c.TaxID, c.PhoneNumber, c.PasswordHash, c.Active, id, adminID)
	if err != nil {
		return mapError(err, ErrUserNotFound)
	}
	return affectedOne(res, ErrUserNotFound)
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return err
	}
	return affectedOne(res, ErrUserNotFound)
}
