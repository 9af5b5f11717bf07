package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type MobilityRepository struct {
	db *sql.DB
}

func NewMobilityRepository(db *sql.DB) *MobilityRepository {
	return &MobilityRepository{db: db}
}

func (r *MobilityRepository) Create(m *domain.MobilityMetric) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO mobility_metrics (id, user_id, date, walking_speed_ms, step_length_cm, double_support_pct, walking_asymmetry_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Date.UTC(), m.WalkingSpeedMs, m.StepLengthCm, m.DoubleSupportPct, m.WalkingAsymmetryPct,
	)
	if err != nil {
		return fmt.Errorf("failed to create mobility metric: %w", err)
	}
	return nil
}

func (r *MobilityRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.MobilityMetric, int, error) {
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
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM mobility_metrics`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count mobility metrics: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, date, walking_speed_ms, step_length_cm, double_support_pct, walking_asymmetry_pct, created_at
		 FROM mobility_metrics`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list mobility metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.MobilityMetric
	for rows.Next() {
		var m domain.MobilityMetric
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.WalkingSpeedMs, &m.StepLengthCm, &m.DoubleSupportPct, &m.WalkingAsymmetryPct, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan mobility metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, total, rows.Err()
}

func (r *MobilityRepository) GetByID(userID, id string) (*domain.MobilityMetric, error) {
	var m domain.MobilityMetric
	err := r.db.QueryRow(
		`SELECT id, user_id, date, walking_speed_ms, step_length_cm, double_support_pct, walking_asymmetry_pct, created_at
		 FROM mobility_metrics WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&m.ID, &m.UserID, &m.Date, &m.WalkingSpeedMs, &m.StepLengthCm, &m.DoubleSupportPct, &m.WalkingAsymmetryPct, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mobility metric: %w", err)
	}
	return &m, nil
}

func (r *MobilityRepository) Update(userID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"date": true, "walking_speed_ms": true, "step_length_cm": true,
		"double_support_pct": true, "walking_asymmetry_pct": true,
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
	query := "UPDATE mobility_metrics SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND user_id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update mobility metric: %w", err)
	}
	return nil
}
