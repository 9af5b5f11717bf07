package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type FoodLogRepository struct {
	db *sql.DB
}

func NewFoodLogRepository(db *sql.DB) *FoodLogRepository {
	return &FoodLogRepository{db: db}
}

func (r *FoodLogRepository) Create(fl *domain.FoodLog) error {
	if fl.ID == "" {
		fl.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO food_logs (id, user_id, food_id, servings, serving_size, meal, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fl.ID, fl.UserID, fl.FoodID, fl.Servings, fl.ServingSize, fl.Meal, fl.Date.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create food log: %w", err)
	}
	return nil
}

func (r *FoodLogRepository) GetByID(userID, id string) (*domain.FoodLog, error) {
	var fl domain.FoodLog
	var f domain.Food
	err := r.db.QueryRow(
		`SELECT fl.id, fl.user_id, fl.food_id, fl.servings, fl.serving_size, fl.meal, fl.date, fl.created_at,
			f.id, f.user_id, f.brand_name, f.food_name, f.serving, f.serving_size, f.calories,
			f.total_fat, f.carbohydrates, f.dietary_fiber, f.sugars, f.protein, f.sodium,
			f.created_at, f.updated_at
		 FROM food_logs fl
		 JOIN foods f ON f.id = fl.food_id
		 WHERE fl.id = ? AND fl.user_id = ?`, id, userID,
	).Scan(
		&fl.ID, &fl.UserID, &fl.FoodID, &fl.Servings, &fl.ServingSize, &fl.Meal, &fl.Date, &fl.CreatedAt,
		&f.ID, &f.UserID, &f.BrandName, &f.FoodName, &f.Serving, &f.ServingSize, &f.Calories,
		&f.TotalFat, &f.Carbohydrates, &f.DietaryFiber, &f.Sugars, &f.Protein, &f.Sodium,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food log: %w", err)
	}
	fl.Food = &f
	return &fl, nil
}

func (r *FoodLogRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.FoodLog, int, error) {
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
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM food_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count food logs: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, food_id, servings, serving_size, meal, date, created_at
		 FROM food_logs`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list food logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.FoodLog
	for rows.Next() {
		var fl domain.FoodLog
		if err := rows.Scan(&fl.ID, &fl.UserID, &fl.FoodID, &fl.Servings, &fl.ServingSize, &fl.Meal, &fl.Date, &fl.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan food log: %w", err)
		}
		logs = append(logs, fl)
	}
	return logs, total, rows.Err()
}

func (r *FoodLogRepository) Update(userID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"servings": true, "serving_size": true, "meal": true, "date": true,
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
	query := "UPDATE food_logs SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND user_id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update food log: %w", err)
	}
	return nil
}

func (r *FoodLogRepository) Delete(userID, id string) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM food_logs WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete food log: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete food log: %w", err)
	}
	return rows > 0, nil
}

// LogTimes feeds the streak computation: the date of every food log the
// user has recorded.
func (r *FoodLogRepository) LogTimes(userID string) ([]time.Time, error) {
	rows, err := r.db.Query(
		`SELECT date FROM food_logs WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list food log times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan food log time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
