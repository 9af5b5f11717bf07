package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/repository"
)

func newUserHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewUserHandler(
		repository.NewUserRepository(db),
		repository.NewWorkoutRepository(db),
		repository.NewFoodLogRepository(db),
	)
	return h, mock, func() { db.Close() }
}

func TestUpdateStreaksRecomputesFromHistory(t *testing.T) {
	h, mock, done := newUserHandler(t)
	defer done()

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	today := time.Now().UTC()

	mock.ExpectQuery(`SELECT start_date FROM workouts`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"start_date"}).AddRow(yesterday).AddRow(today))
	mock.ExpectQuery(`SELECT date FROM food_logs`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"date"}))
	mock.ExpectExec(`UPDATE users SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	h.UpdateStreaks(rec, authedReq(http.MethodPost, "/api/v1/users/me/streaks/update", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Streaks domain.StreakData `json:"streaks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Streaks.CurrentWorkoutStreak)
	assert.Equal(t, 2, resp.Streaks.LongestWorkoutStreak)
	assert.Equal(t, 0, resp.Streaks.CurrentFoodStreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreaksReturnsCachedCounters(t *testing.T) {
	h, mock, done := newUserHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u1").
		WillReturnRows(userRowsForTest("u1"))

	rec := httptest.NewRecorder()
	h.Streaks(rec, authedReq(http.MethodGet, "/api/v1/users/me/streaks", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "streaks")
	assert.Contains(t, resp["streaks"], "currentWorkoutStreak")
	assert.Contains(t, resp["streaks"], "longestFoodStreak")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMeRejectsUnknownCalorieMethod(t *testing.T) {
	h, _, done := newUserHandler(t)
	defer done()

	rec := httptest.NewRecorder()
	h.UpdateMe(rec, authedReq(http.MethodPatch, "/api/v1/users/me",
		`{"calorieCountingMethod":"MODEL9"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
