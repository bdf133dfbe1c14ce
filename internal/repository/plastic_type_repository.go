package repository

import (
	"context"
	"database/sql"

	"greenia/internal/models"
)

type PlasticTypeRepository interface {
	List(ctx context.Context) ([]models.PlasticType, error)
	GetByCode(ctx context.Context, code string) (*models.PlasticType, error)
}

type plasticTypeRepository struct {
	db *sql.DB
}

func NewPlasticTypeRepository(db *sql.DB) PlasticTypeRepository {
	return &plasticTypeRepository{db: db}
}

func (r *plasticTypeRepository) List(ctx context.Context) ([]models.PlasticType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, co2_per_unit_kg FROM plastic_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []models.PlasticType{}
	for rows.Next() {
		var p models.PlasticType
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.CO2PerUnitKg); err != nil {
			return nil, err
		}
		types = append(types, p)
	}
	return types, rows.Err()
}

func (r *plasticTypeRepository) GetByCode(ctx context.Context, code string) (*models.PlasticType, error) {
	var p models.PlasticType
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, co2_per_unit_kg FROM plastic_types WHERE code = $1`, code).
		Scan(&p.ID, &p.Code, &p.Name, &p.CO2PerUnitKg)
	if err != nil {
		return nil, mapError(err, ErrPlasticTypeNotFound)
	}
	return &p, nil
}
