package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenia/internal/db"
	"greenia/internal/models"
)

// Trend granularities accepted by RecognitionRepository.Trend.
const (
	TrendDaily   = "day"
	TrendMonthly = "month"
)

type RecognitionRepository interface {
	// SaveBatch inserts every row of one recognition in a single transaction.
	SaveBatch(ctx context.Context, rows []models.Recognition) error
	// AttachImage records the archived photo of an already saved batch.
	AttachImage(ctx context.Context, batchID string, imageKey string) error
	ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.Recognition, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)

	ActivityByUser(ctx context.Context, adminID string, rng models.DateRange) ([]models.UserActivity, error)
	ImpactByType(ctx context.Context, adminID string, rng models.DateRange) ([]models.PlasticImpact, error)
	Totals(ctx context.Context, adminID string, rng models.DateRange) (*models.Totals, error)
	Trend(ctx context.Context, adminID string, unit string, rng models.DateRange) ([]models.TrendPoint, error)
}

type recognitionRepository struct {
	db *sql.DB
}

func NewRecognitionRepository(db *sql.DB) RecognitionRepository {
	return &recognitionRepository{db: db}
}

func (r *recognitionRepository) SaveBatch(ctx context.Context, rows []models.Recognition) error {
	if len(rows) == 0 {
		return nil
	}
	query := `
		INSERT INTO recognitions (id, batch_id, plastic_type_id, quantity, weight_kg, co2_saved_kg, image_key, user_id, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING recognized_at
	`
	return db.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		for i := range rows {
			row := &rows[i]
			err := tx.QueryRowContext(ctx, query, row.ID, row.BatchID, row.PlasticTypeID, row.Quantity,
				row.WeightKg, row.CO2SavedKg, row.ImageKey, row.UserID, row.AdminID).Scan(&row.RecognizedAt)
			if err != nil {
				return fmt.Errorf("insert recognition %s: %w", row.PlasticCode, err)
			}
		}
		return nil
	})
}

func (r *recognitionRepository) AttachImage(ctx context.Context, batchID string, imageKey string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recognitions SET image_key = $2 WHERE batch_id = $1`, batchID, imageKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecognitionNotFound
	}
	return nil
}

func (r *recognitionRepository) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.Recognition, error) {
	query := `
		SELECT r.id, r.batch_id, r.plastic_type_id, p.code, p.name, r.quantity, r.weight_kg, r.co2_saved_kg,
			r.image_key, r.user_id, r.admin_id, r.recognized_at
		FROM recognitions r
		JOIN plastic_types p ON p.id = r.plastic_type_id
		WHERE r.user_id = $1
		ORDER BY r.recognized_at DESC, p.code
	`
	args := []any{userID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Recognition{}
	for rows.Next() {
		var rec models.Recognition
		var imageKey, adminID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.PlasticTypeID, &rec.PlasticCode, &rec.PlasticName,
			&rec.Quantity, &rec.WeightKg, &rec.CO2SavedKg, &imageKey, &rec.UserID, &adminID, &rec.RecognizedAt); err != nil {
			return nil, err
		}
		if imageKey.Valid {
			rec.ImageKey = &imageKey.String
		}
		if adminID.Valid {
			rec.AdminID = &adminID.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *recognitionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recognitions WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *recognitionRepository) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var s models.UserStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT batch_id), COALESCE(SUM(quantity), 0), COALESCE(SUM(co2_saved_kg), 0)
		FROM recognitions
		WHERE user_id = $1
	`, userID).Scan(&s.Recognitions, &s.Bottles, &s.CO2SavedKg)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *recognitionRepository) ActivityByUser(ctx context.Context, adminID string, rng models.DateRange) ([]models.UserActivity, error) {
	from, to := rangeArgs(rng)
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email,
			COUNT(DISTINCT r.batch_id), COALESCE(SUM(r.quantity), 0), COALESCE(SUM(r.co2_saved_kg), 0)
		FROM users u
		LEFT JOIN recognitions r ON r.user_id = u.id
			AND ($2::timestamptz IS NULL OR r.recognized_at >= $2)
			AND ($3::timestamptz IS NULL OR r.recognized_at < $3)
		WHERE u.admin_id = $1
		GROUP BY u.id, u.name, u.email
		ORDER BY 5 DESC, u.name
	`, adminID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.UserActivity{}
	for rows.Next() {
		var a models.UserActivity
		if err := rows.Scan(&a.UserID, &a.Name, &a.Email, &a.Recognitions, &a.Bottles, &a.CO2SavedKg); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *recognitionRepository) ImpactByType(ctx context.Context, adminID string, rng models.DateRange) ([]models.PlasticImpact, error) {
	from, to := rangeArgs(rng)
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.code, p.name, COUNT(r.id), COALESCE(SUM(r.quantity), 0),
			COALESCE(SUM(r.weight_kg), 0), COALESCE(SUM(r.co2_saved_kg), 0)
		FROM recognitions r
		JOIN users u ON u.id = r.user_id
		JOIN plastic_types p ON p.id = r.plastic_type_id
		WHERE u.admin_id = $1
			AND ($2::timestamptz IS NULL OR r.recognized_at >= $2)
			AND ($3::timestamptz IS NULL OR r.recognized_at < $3)
		GROUP BY p.code, p.name
		ORDER BY 4 DESC, p.code
	`, adminID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PlasticImpact{}
	for rows.Next() {
		var p models.PlasticImpact
		if err := rows.Scan(&p.Code, &p.Name, &p.Recognitions, &p.Bottles, &p.WeightKg, &p.CO2SavedKg); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *recognitionRepository) Totals(ctx context.Context, adminID string, rng models.DateRange) (*models.Totals, error) {
	from, to := rangeArgs(rng)
	var t models.Totals
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT r.user_id), COUNT(DISTINCT r.batch_id), COALESCE(SUM(r.quantity), 0),
			COALESCE(SUM(r.weight_kg), 0), COALESCE(SUM(r.co2_saved_kg), 0)
		FROM recognitions r
		JOIN users u ON u.id = r.user_id
		WHERE u.admin_id = $1
			AND ($2::timestamptz IS NULL OR r.recognized_at >= $2)
			AND ($3::timestamptz IS NULL OR r.recognized_at < $3)
	`, adminID, from, to).Scan(&t.ActiveUsers, &t.Recognitions, &t.Bottles, &t.WeightKg, &t.CO2SavedKg)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *recognitionRepository) Trend(ctx context.Context, adminID string, unit string, rng models.DateRange) ([]models.TrendPoint, error) {
	if unit != TrendDaily && unit != TrendMonthly {
		return nil, fmt.Errorf("unsupported trend unit %q", unit)
	}
	from, to := rangeArgs(rng)
	query := fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', r.recognized_at) AS period, COALESCE(SUM(r.quantity), 0), COALESCE(SUM(r.co2_saved_kg), 0)
		FROM recognitions r
		JOIN users u ON u.id = r.user_id
		WHERE u.admin_id = $1
			AND ($2::timestamptz IS NULL OR r.recognized_at >= $2)
			AND ($3::timestamptz IS NULL OR r.recognized_at < $3)
		GROUP BY period
		ORDER BY period
	`, unit)

	rows, err := r.db.QueryContext(ctx, query, adminID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TrendPoint{}
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Period, &p.Bottles, &p.CO2SavedKg); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func rangeArgs(rng models.DateRange) (any, any) {
	return nullTime(rng.From), nullTime(rng.To)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
