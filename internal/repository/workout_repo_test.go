package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutRepoSoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE workouts SET is_deleted = 1`).
		WithArgs(now, "w1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewWorkoutRepository(db)
	deleted, err := repo.SoftDelete("u1", "w1", now)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutRepoSoftDeleteAlreadyDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE workouts SET is_deleted = 1`).
		WithArgs(now, "w1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewWorkoutRepository(db)
	deleted, err := repo.SoftDelete("u1", "w1", now)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutRepoActiveStartTimes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 2, 18, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT start_date FROM workouts WHERE user_id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"start_date"}).AddRow(t1).AddRow(t2))

	repo := NewWorkoutRepository(db)
	times, err := repo.ActiveStartTimes("u1")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t1, t2}, times)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutRepoListCountsBeforePaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workouts`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM workouts`).
		WithArgs("u1", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewWorkoutRepository(db)
	workouts, total, err := repo.List("u1", nil, nil, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, workouts)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
