package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type BodyMeasurementRepository struct {
	db *sql.DB
}

func NewBodyMeasurementRepository(db *sql.DB) *BodyMeasurementRepository {
	return &BodyMeasurementRepository{db: db}
}

func (r *BodyMeasurementRepository) Create(m *domain.BodyMeasurement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO body_measurements (id, user_id, date, weight_kg, height_cm, body_fat_percentage, lean_body_mass_kg, waist_cm)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Date.UTC(), m.WeightKg, m.HeightCm, m.BodyFatPercentage, m.LeanBodyMassKg, m.WaistCm,
	)
	if err != nil {
		return fmt.Errorf("failed to create body measurement: %w", err)
	}
	return nil
}

func (r *BodyMeasurementRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.BodyMeasurement, int, error) {
	where := ` WHERE user_id = ?`
	args := []interface{}{userID}
	if from != nil {
		where += ` AND date >= ?`
		args = append(args, from.UTC())
	}
	if to != nil {
		where += ` AND date <= ?`
		args = append(args, to.UTC())
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM body_measurements`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count body measurements: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, date, weight_kg, height_cm, body_fat_percentage, lean_body_mass_kg, waist_cm, created_at
		 FROM body_measurements`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list body measurements: %w", err)
	}
	defer rows.Close()

	var measurements []domain.BodyMeasurement
	for rows.Next() {
		var m domain.BodyMeasurement
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.WeightKg, &m.HeightCm, &m.BodyFatPercentage, &m.LeanBodyMassKg, &m.WaistCm, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan body measurement: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, total, rows.Err()
}

func (r *BodyMeasurementRepository) GetByID(userID, id string) (*domain.BodyMeasurement, error) {
	var m domain.BodyMeasurement
	err := r.db.QueryRow(
		`SELECT id, user_id, date, weight_kg, height_cm, body_fat_percentage, lean_body_mass_kg, waist_cm, created_at
		 FROM body_measurements WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&m.ID, &m.UserID, &m.Date, &m.WeightKg, &m.HeightCm, &m.BodyFatPercentage, &m.LeanBodyMassKg, &m.WaistCm, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get body measurement: %w", err)
	}
	return &m, nil
}

func (r *BodyMeasurementRepository) Update(userID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"date": true, "weight_kg": true, "height_cm": true,
		"body_fat_percentage": true, "lean_body_mass_kg": true, "waist_cm": true,
	}

	var setClauses []string
	var args []interface{}
	for k, v := range fields {
		if !allowed[k] {
			continue
		}
		setClauses = append(setClauses, k+" = ?")
		args = append(args, v)
	}

	if len(setClauses) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := "UPDATE body_measurements SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND user_id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update body measurement: %w", err)
	}
	return nil
}

// Latest returns the most recent measurement, or (nil, nil) when the user
// has none.
func (r *BodyMeasurementRepository) Latest(userID string) (*domain.BodyMeasurement, error) {
	var m domain.BodyMeasurement
	err := r.db.QueryRow(
		`SELECT id, user_id, date, weight_kg, height_cm, body_fat_percentage, lean_body_mass_kg, waist_cm, created_at
		 FROM body_measurements WHERE user_id = ? ORDER BY date DESC LIMIT 1`, userID,
	).Scan(&m.ID, &m.UserID, &m.Date, &m.WeightKg, &m.HeightCm, &m.BodyFatPercentage, &m.LeanBodyMassKg, &m.WaistCm, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest body measurement: %w", err)
	}
	return &m, nil
}
