package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

func userRows(id, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "dob", "gender", "role",
		"calorie_counting_method", "email_verified",
		"current_workout_streak", "longest_workout_streak", "current_food_streak", "longest_food_streak",
		"last_workout_date", "last_food_log_date", "last_active_at", "created_at", "updated_at",
	}).AddRow(
		id, email, "hash", "Ada", "Lovelace", nil, nil, "USER",
		nil, false,
		2, 5, 0, 3,
		nil, nil, now, now, now,
	)
}

func TestUserRepoGetByIDFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u1").
		WillReturnRows(userRows("u1", "a@b.com"))

	repo := NewUserRepository(db)
	user, err := repo.GetByID("u1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 2, user.CurrentWorkoutStreak)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserRepository(db)
	user, err := repo.GetByID("missing")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	user := &domain.User{Email: "a@b.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoVerifyEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET email_verified`).
		WithArgs("otp-123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET email_verified`).
		WithArgs("bad-otp").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)

	ok, err := repo.VerifyEmail("otp-123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.VerifyEmail("bad-otp")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdateIgnoresDisallowedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No exec expected: role and password_hash are not updatable here.
	repo := NewUserRepository(db)
	err = repo.Update("u1", map[string]interface{}{
		"role":          "ADMIN",
		"password_hash": "boom",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdateStreaks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	lastWorkout := now.Add(-24 * time.Hour)
	streaks := domain.StreakData{
		CurrentWorkoutStreak: 3,
		LongestWorkoutStreak: 7,
		CurrentFoodStreak:    1,
		LongestFoodStreak:    4,
		LastWorkoutDate:      &lastWorkout,
		LastActiveAt:         &lastWorkout,
	}

	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(3, 7, 1, 4, lastWorkout, nil, lastWorkout, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	require.NoError(t, repo.UpdateStreaks("u1", streaks, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoDeleteRemovesOwnedRowsFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, table := range []string{
		"food_logs", "foods", "user_files", "heart_rates", "steps",
		"body_measurements", "vital_signs", "mobility_metrics",
		"workouts", "user_cal_profiles", "password_reset_tokens",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewUserRepository(db)
	require.NoError(t, repo.Delete("u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
