package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type VitalSignsRepository struct {
	db *sql.DB
}

func NewVitalSignsRepository(db *sql.DB) *VitalSignsRepository {
	return &VitalSignsRepository{db: db}
}

func (r *VitalSignsRepository) Create(v *domain.VitalSigns) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO vital_signs (id, user_id, date, systolic_mmhg, diastolic_mmhg, respiratory_rate, oxygen_saturation_pct, body_temperature_celsius)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Date.UTC(), v.SystolicMmHg, v.DiastolicMmHg, v.RespiratoryRate, v.OxygenSaturationPct, v.BodyTemperatureCelsius,
	)
	if err != nil {
		return fmt.Errorf("failed to create vital signs: %w", err)
	}
	return nil
}

func (r *VitalSignsRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.VitalSigns, int, error) {
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
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM vital_signs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vital signs: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, date, systolic_mmhg, diastolic_mmhg, respiratory_rate, oxygen_saturation_pct, body_temperature_celsius, created_at
		 FROM vital_signs`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vital signs: %w", err)
	}
	defer rows.Close()

	var vitals []domain.VitalSigns
	for rows.Next() {
		var v domain.VitalSigns
		if err := rows.Scan(&v.ID, &v.UserID, &v.Date, &v.SystolicMmHg, &v.DiastolicMmHg, &v.RespiratoryRate, &v.OxygenSaturationPct, &v.BodyTemperatureCelsius, &v.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan vital signs: %w", err)
		}
		vitals = append(vitals, v)
	}
	return vitals, total, rows.Err()
}

func (r *VitalSignsRepository) GetByID(userID, id string) (*domain.VitalSigns, error) {
	var v domain.VitalSigns
	err := r.db.QueryRow(
		`SELECT id, user_id, date, systolic_mmhg, diastolic_mmhg, respiratory_rate, oxygen_saturation_pct, body_temperature_celsius, created_at
		 FROM vital_signs WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&v.ID, &v.UserID, &v.Date, &v.SystolicMmHg, &v.DiastolicMmHg, &v.RespiratoryRate, &v.OxygenSaturationPct, &v.BodyTemperatureCelsius, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vital signs: %w", err)
	}
	return &v, nil
}

func (r *VitalSignsRepository) Update(userID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"date": true, "systolic_mmhg": true, "diastolic_mmhg": true,
		"respiratory_rate": true, "oxygen_saturation_pct": true, "body_temperature_celsius": true,
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
	query := "UPDATE vital_signs SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND user_id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update vital signs: %w", err)
	}
	return nil
}

func (r *VitalSignsRepository) Latest(userID string) (*domain.VitalSigns, error) {
	var v domain.VitalSigns
	err := r.db.QueryRow(
		`SELECT id, user_id, date, systolic_mmhg, diastolic_mmhg, respiratory_rate, oxygen_saturation_pct, body_temperature_celsius, created_at
		 FROM vital_signs WHERE user_id = ? ORDER BY date DESC LIMIT 1`, userID,
	).Scan(&v.ID, &v.UserID, &v.Date, &v.SystolicMmHg, &v.DiastolicMmHg, &v.RespiratoryRate, &v.OxygenSaturationPct, &v.BodyTemperatureCelsius, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest vital signs: %w", err)
	}
	return &v, nil
}
