package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, dob, gender, role,
	calorie_counting_method, email_verified,
	current_workout_streak, longest_workout_streak, current_food_streak, longest_food_streak,
	last_workout_date, last_food_log_date, last_active_at, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DOB, &u.Gender, &u.Role,
		&u.CalorieCountingMethod, &u.EmailVerified,
		&u.CurrentWorkoutStreak, &u.LongestWorkoutStreak, &u.CurrentFoodStreak, &u.LongestFoodStreak,
		&u.LastWorkoutDate, &u.LastFoodLogDate, &u.LastActiveAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	_, err := r.db.Exec(
		`INSERT INTO users (id, email, password_hash, first_name, last_name, dob, gender, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DOB, u.Gender, u.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(page, limit int) ([]domain.User, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.Query(
		`SELECT `+userColumns+` FROM users ORDER BY last_active_at DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, rows.Err()
}

// Search matches the query against first name, last name, email and id,
// case-insensitively, with paging.
func (r *UserRepository) Search(query string, page, limit int) ([]domain.User, int, error) {
	where := ""
	var args []interface{}
	if q := strings.TrimSpace(query); q != "" {
		where = ` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR id LIKE ?`
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, rows.Err()
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *UserRepository) Update(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"email": true, "first_name": true, "last_name": true,
		"dob": true, "gender": true, "calorie_counting_method": true,
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

	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(id, token string) error {
	_, err := r.db.Exec(`UPDATE users SET email_verification_token = ? WHERE id = ?`, token, id)
	if err != nil {
		return fmt.Errorf("failed to set verification token: %w", err)
	}
	return nil
}

func (r *UserRepository) VerifyEmail(token string) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE users SET email_verified = 1, email_verification_token = NULL
		 WHERE email_verification_token = ?`, token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to verify email: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to verify email: %w", err)
	}
	return rows > 0, nil
}

// UpdateStreaks writes the recomputed counters back to the cached columns.
func (r *UserRepository) UpdateStreaks(id string, s domain.StreakData, now time.Time) error {
	lastActive := now
	if s.LastActiveAt != nil {
		lastActive = *s.LastActiveAt
	}
	_, err := r.db.Exec(
		`UPDATE users SET
			current_workout_streak = ?, longest_workout_streak = ?,
			current_food_streak = ?, longest_food_streak = ?,
			last_workout_date = ?, last_food_log_date = ?, last_active_at = ?
		 WHERE id = ?`,
		s.CurrentWorkoutStreak, s.LongestWorkoutStreak,
		s.CurrentFoodStreak, s.LongestFoodStreak,
		s.LastWorkoutDate, s.LastFoodLogDate, lastActive, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update streaks: %w", err)
	}
	return nil
}

func (r *UserRepository) TouchLastActive(id string, now time.Time) error {
	_, err := r.db.Exec(`UPDATE users SET last_active_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}
	return nil
}

// Delete removes the user and every owned row in one transaction. The
// foreign keys would cascade anyway; the explicit order mirrors the
// dependency graph and keeps partial deletes impossible.
func (r *UserRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}

	tables := []string{
		"food_logs", "foods", "user_files", "heart_rates", "steps",
		"body_measurements", "vital_signs", "mobility_metrics",
		"workouts", "user_cal_profiles", "password_reset_tokens",
	}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}
