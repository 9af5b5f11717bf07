package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type CalProfileRepository struct {
	db *sql.DB
}

func NewCalProfileRepository(db *sql.DB) *CalProfileRepository {
	return &CalProfileRepository{db: db}
}

func (r *CalProfileRepository) GetByUserID(userID string) (*domain.UserCalProfile, error) {
	var p domain.UserCalProfile
	var methods string
	err := r.db.QueryRow(
		`SELECT id, user_id, estimated_vo2_max, vo2_efficiency_coefficient, resting_metabolic_rate,
			hr_vo2_slope, hr_vo2_intercept, hr_rer_slope, hr_rer_intercept,
			hr_ee_slope, hr_ee_intercept, o2_rer_slope, o2_rer_intercept,
			calorie_counting_method, available_methods, last_processed_at, created_at, updated_at
		 FROM user_cal_profiles WHERE user_id = ?`, userID,
	).Scan(
		&p.ID, &p.UserID, &p.EstimatedVo2Max, &p.Vo2EfficiencyCoefficient, &p.RestingMetabolicRate,
		&p.HrVo2Slope, &p.HrVo2Intercept, &p.HrRerSlope, &p.HrRerIntercept,
		&p.HrEeSlope, &p.HrEeIntercept, &p.O2RerSlope, &p.O2RerIntercept,
		&p.CalorieCountingMethod, &methods, &p.LastProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cal profile: %w", err)
	}
	if methods != "" {
		p.AvailableMethods = strings.Split(methods, ",")
	}
	return &p, nil
}

// Replace writes a complete fitted coefficient set for the user, replacing
// any previous profile. Coefficients from different fits must never be
// mixed, so there is deliberately no per-column update.
func (r *CalProfileRepository) Replace(p *domain.UserCalProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	methods := strings.Join(p.AvailableMethods, ",")

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin profile transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM user_cal_profiles WHERE user_id = ?`, p.UserID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear cal profile: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO user_cal_profiles
			(id, user_id, estimated_vo2_max, vo2_efficiency_coefficient, resting_metabolic_rate,
			 hr_vo2_slope, hr_vo2_intercept, hr_rer_slope, hr_rer_intercept,
			 hr_ee_slope, hr_ee_intercept, o2_rer_slope, o2_rer_intercept,
			 calorie_counting_method, available_methods, last_processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.EstimatedVo2Max, p.Vo2EfficiencyCoefficient, p.RestingMetabolicRate,
		p.HrVo2Slope, p.HrVo2Intercept, p.HrRerSlope, p.HrRerIntercept,
		p.HrEeSlope, p.HrEeIntercept, p.O2RerSlope, p.O2RerIntercept,
		p.CalorieCountingMethod, methods, p.LastProcessedAt,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert cal profile: %w", err)
	}

	return tx.Commit()
}
