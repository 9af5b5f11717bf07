package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type StepsRepository struct {
	db *sql.DB
}

func NewStepsRepository(db *sql.DB) *StepsRepository {
	return &StepsRepository{db: db}
}

func (r *StepsRepository) Create(s *domain.StepEntry) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO steps (id, user_id, hk_id, date, step_count) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.HkID, s.Date.UTC(), s.StepCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create step entry: %w", err)
	}
	return nil
}

// CreateBulk inserts a batch of step entries, skipping entries whose
// HealthKit id is already stored. Returns the number of rows inserted.
func (r *StepsRepository) CreateBulk(userID string, entries []domain.StepEntry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for i := range entries {
		s := &entries[i]
		if s.HkID != nil {
			var exists int
			err := tx.QueryRow(
				`SELECT 1 FROM steps WHERE user_id = ? AND hk_id = ? LIMIT 1`,
				userID, *s.HkID,
			).Scan(&exists)
			if err == nil {
				continue
			}
			if err != sql.ErrNoRows {
				return 0, fmt.Errorf("failed to check step entry: %w", err)
			}
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		_, err := tx.Exec(
			`INSERT INTO steps (id, user_id, hk_id, date, step_count) VALUES (?, ?, ?, ?, ?)`,
			s.ID, userID, s.HkID, s.Date.UTC(), s.StepCount,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert step entry: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit step entries: %w", err)
	}
	return inserted, nil
}

func (r *StepsRepository) List(userID string, from, to *time.Time, page, limit int) ([]domain.StepEntry, int, error) {
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
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM steps`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count step entries: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(
		`SELECT id, user_id, hk_id, date, step_count, created_at
		 FROM steps`+where+` ORDER BY date DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list step entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.StepEntry
	for rows.Next() {
		var s domain.StepEntry
		if err := rows.Scan(&s.ID, &s.UserID, &s.HkID, &s.Date, &s.StepCount, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan step entry: %w", err)
		}
		entries = append(entries, s)
	}
	return entries, total, rows.Err()
}
