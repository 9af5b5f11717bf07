package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type WorkoutRepository struct {
	db *sql.DB
}

func NewWorkoutRepository(db *sql.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

const workoutColumns = `id, user_id, hk_id, activity_type, start_date, end_date,
	total_distance_meters, total_energy_burned_kcal, duration_seconds,
	average_heart_rate_bpm, highest_heart_rate, lowest_heart_rate,
	first_heart_rate_time, last_heart_rate_time, source, is_deleted, deleted_at,
	model1_kcal, model2_kcal, model3_kcal, model4_kcal, created_at, updated_at`

func scanWorkout(row interface{ Scan(...interface{}) error }) (*domain.Workout, error) {
	var w domain.Workout
	err := row.Scan(
		&w.ID, &w.UserID, &w.HkID, &w.ActivityType, &w.StartDate, &w.EndDate,
		&w.TotalDistanceMeters, &w.TotalEnergyBurnedKcal, &w.DurationSeconds,
		&w.AverageHeartRateBPM, &w.HighestHeartRate, &w.LowestHeartRate,
		&w.FirstHeartRateTime, &w.LastHeartRateTime, &w.Source, &w.IsDeleted, &w.DeletedAt,
		&w.Model1Kcal, &w.Model2Kcal, &w.Model3Kcal, &w.Model4Kcal, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkoutRepository) Create(w *domain.Workout) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Source == "" {
		w.Source = domain.SourceManual
	}
	_, err := r.db.Exec(
		`INSERT INTO workouts
			(id, user_id, hk_id, activity_type, start_date, end_date,
			 total_distance_meters, total_energy_burned_kcal, duration_seconds,
			 average_heart_rate_bpm, highest_heart_rate, lowest_heart_rate,
			 first_heart_rate_time, last_heart_rate_time, source,
			 model1_kcal, model2_kcal, model3_kcal, model4_kcal)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.HkID, w.ActivityType, w.StartDate.UTC(), w.EndDate.UTC(),
		w.TotalDistanceMeters, w.TotalEnergyBurnedKcal, w.DurationSeconds,
		w.AverageHeartRateBPM, w.HighestHeartRate, w.LowestHeartRate,
		w.FirstHeartRateTime, w.LastHeartRateTime, w.Source,
		w.Model1Kcal, w.Model2Kcal, w.Model3Kcal, w.Model4Kcal,
	)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

func (r *WorkoutRepository) GetByID(userID, id string) (*domain.Workout, error) {
	w, err := scanWorkout(r.db.QueryRow(
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return w, nil
}

// List returns non-deleted workouts, newest first, optionally bounded to a
// start-date range.
func (r *WorkoutRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.Workout, int, error) {
	where := ` WHERE user_id = ? AND is_deleted = 0`
	args := []interface{}{userID}
	if from != nil {
		where += ` AND start_date >= ?`
		args = append(args, from.UTC())
	}
	if to != nil {
		where += ` AND start_date <= ?`
		args = append(args, to.UTC())
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM workouts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workouts: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT `+workoutColumns+` FROM workouts`+where+` ORDER BY start_date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []domain.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	return workouts, total, rows.Err()
}

func (r *WorkoutRepository) Update(userID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"activity_type": true, "start_date": true, "end_date": true,
		"total_distance_meters": true, "total_energy_burned_kcal": true,
		"duration_seconds": true, "average_heart_rate_bpm": true,
		"highest_heart_rate": true, "lowest_heart_rate": true,
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
	query := "UPDATE workouts SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND user_id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}
	return nil
}

func (r *WorkoutRepository) SoftDelete(userID, id string, now time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE workouts SET is_deleted = 1, deleted_at = ? WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		now.UTC(), id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete workout: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete workout: %w", err)
	}
	return rows > 0, nil
}

func (r *WorkoutRepository) SoftDeleteByHkID(userID, hkID string, now time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE workouts SET is_deleted = 1, deleted_at = ? WHERE hk_id = ? AND user_id = ? AND is_deleted = 0`,
		now.UTC(), hkID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete workout by hk id: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete workout by hk id: %w", err)
	}
	return rows > 0, nil
}

// ActiveStartTimes feeds the streak computation: start dates of every
// non-deleted workout the user has logged.
func (r *WorkoutRepository) ActiveStartTimes(userID string) ([]time.Time, error) {
	rows, err := r.db.Query(
		`SELECT start_date FROM workouts WHERE user_id = ? AND is_deleted = 0`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan workout time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
