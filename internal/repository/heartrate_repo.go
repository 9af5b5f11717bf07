package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type HeartRateRepository struct {
	db *sql.DB
}

func NewHeartRateRepository(db *sql.DB) *HeartRateRepository {
	return &HeartRateRepository{db: db}
}

func (r *HeartRateRepository) Create(hr *domain.HeartRate) error {
	if hr.ID == "" {
		hr.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO heart_rates (id, user_id, workout_id, hk_id, timestamp, heart_rate_bpm)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		hr.ID, hr.UserID, hr.WorkoutID, hr.HkID, hr.Timestamp.UTC(), hr.HeartRateBPM,
	)
	if err != nil {
		return fmt.Errorf("failed to create heart rate: %w", err)
	}
	return nil
}

// CreateBulk inserts a batch of samples in one transaction, skipping any
// sample whose HealthKit id is already stored. Returns the number of rows
// actually inserted.
func (r *HeartRateRepository) CreateBulk(userID string, samples []domain.HeartRate) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for i := range samples {
		hr := &samples[i]
		if hr.HkID != nil {
			var exists int
			err := tx.QueryRow(
				`SELECT 1 FROM heart_rates WHERE user_id = ? AND hk_id = ? LIMIT 1`,
				userID, *hr.HkID,
			).Scan(&exists)
			if err == nil {
				continue
			}
			if err != sql.ErrNoRows {
				return 0, fmt.Errorf("failed to check heart rate: %w", err)
			}
		}
		if hr.ID == "" {
			hr.ID = uuid.NewString()
		}
		_, err := tx.Exec(
			`INSERT INTO heart_rates (id, user_id, workout_id, hk_id, timestamp, heart_rate_bpm)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			hr.ID, userID, hr.WorkoutID, hr.HkID, hr.Timestamp.UTC(), hr.HeartRateBPM,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert heart rate: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit heart rates: %w", err)
	}
	return inserted, nil
}

func (r *HeartRateRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.HeartRate, int, error) {
	where := ` WHERE user_id = ?`
	args := []interface{}{userID}
	if from != nil {
		where += ` AND timestamp >= ?`
		args = append(args, from.UTC())
	}
	if to != nil {
		where += ` AND timestamp <= ?`
		args = append(args, to.UTC())
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM heart_rates`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count heart rates: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, workout_id, hk_id, timestamp, heart_rate_bpm, created_at
		 FROM heart_rates`+where+` ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list heart rates: %w", err)
	}
	defer rows.Close()

	var samples []domain.HeartRate
	for rows.Next() {
		var hr domain.HeartRate
		if err := rows.Scan(&hr.ID, &hr.UserID, &hr.WorkoutID, &hr.HkID, &hr.Timestamp, &hr.HeartRateBPM, &hr.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan heart rate: %w", err)
		}
		samples = append(samples, hr)
	}
	return samples, total, rows.Err()
}

func (r *HeartRateRepository) ListByWorkout(userID, workoutID string) ([]domain.HeartRate, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, workout_id, hk_id, timestamp, heart_rate_bpm, created_at
		 FROM heart_rates WHERE user_id = ? AND workout_id = ? ORDER BY timestamp ASC`,
		userID, workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout heart rates: %w", err)
	}
	defer rows.Close()

	var samples []domain.HeartRate
	for rows.Next() {
		var hr domain.HeartRate
		if err := rows.Scan(&hr.ID, &hr.UserID, &hr.WorkoutID, &hr.HkID, &hr.Timestamp, &hr.HeartRateBPM, &hr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan heart rate: %w", err)
		}
		samples = append(samples, hr)
	}
	return samples, rows.Err()
}
