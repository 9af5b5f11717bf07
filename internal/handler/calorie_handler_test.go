package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
)

func authedReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, "u1")
	return req.WithContext(ctx)
}

func emptyProfileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"})
}

func fittedProfileRows(methods string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "estimated_vo2_max", "vo2_efficiency_coefficient", "resting_metabolic_rate",
		"hr_vo2_slope", "hr_vo2_intercept", "hr_rer_slope", "hr_rer_intercept",
		"hr_ee_slope", "hr_ee_intercept", "o2_rer_slope", "o2_rer_intercept",
		"calorie_counting_method", "available_methods", "last_processed_at", "created_at", "updated_at",
	}).AddRow(
		"p1", "u1", 42.0, 1.1, nil,
		0.02, -1.5, 0.001, 0.7,
		0.05, 1.0, 1.106, 3.941,
		nil, methods, nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func userRowsForTest(id string) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "dob", "gender", "role",
		"calorie_counting_method", "email_verified",
		"current_workout_streak", "longest_workout_streak", "current_food_streak", "longest_food_streak",
		"last_workout_date", "last_food_log_date", "last_active_at", "created_at", "updated_at",
	}).AddRow(
		id, "a@b.com", "hash", "Ada", "Lovelace", nil, nil, "USER",
		nil, false,
		0, 0, 0, 0,
		nil, nil, now, now, now,
	)
}

func newCalorieHandler(t *testing.T) (*CalorieHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewCalorieHandler(repository.NewUserRepository(db), repository.NewCalProfileRepository(db))
	return h, mock, func() { db.Close() }
}

func TestCalculateFallbackWithoutProfile(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(emptyProfileRows())

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"currentHeartRate":120,"durationMinutes":30}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FALLBACK", resp.Method)
	assert.False(t, resp.HasPnoeData)
	assert.InDelta(t, 120.0, resp.HeartRate, 1e-9)
	// (120-60)*0.1 = 6 kcal/min over 30 minutes
	assert.InDelta(t, 180.0, resp.CalculatedCalories, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculatePersonalizedMethod(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(fittedProfileRows("MODEL2"))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u1").
		WillReturnRows(userRowsForTest("u1"))

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"currentHeartRate":120,"durationMinutes":10}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MODEL2", resp.Method)
	assert.True(t, resp.HasPnoeData)
	// 120*0.05+1.0 = 7 kcal/min, 7/60*10
	assert.InDelta(t, 7.0/60*10, resp.CalculatedCalories, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The request carries the heart rate as currentHeartRate; the response
// echoes it back as heartRate. A body keyed the response way must not
// decode.
func TestCalculateRequestFieldName(t *testing.T) {
	h, _, done := newCalorieHandler(t)
	defer done()

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"heartRate":120,"durationMinutes":30}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculatePrefersProfileSelectedMethod(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "estimated_vo2_max", "vo2_efficiency_coefficient", "resting_metabolic_rate",
		"hr_vo2_slope", "hr_vo2_intercept", "hr_rer_slope", "hr_rer_intercept",
		"hr_ee_slope", "hr_ee_intercept", "o2_rer_slope", "o2_rer_intercept",
		"calorie_counting_method", "available_methods", "last_processed_at", "created_at", "updated_at",
	}).AddRow(
		"p1", "u1", 42.0, 1.1, nil,
		0.02, -1.5, 0.001, 0.7,
		0.05, 1.0, 1.106, 3.941,
		"MODEL2", "MODEL1,MODEL2", nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	// no users query expected: the profile's own selection settles it
	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(rows)

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"currentHeartRate":120,"durationMinutes":10}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MODEL2", resp.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculateRejectsOutOfRangeHeartRate(t *testing.T) {
	h, _, done := newCalorieHandler(t)
	defer done()

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"currentHeartRate":300,"durationMinutes":10}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateModel4NotImplemented(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(fittedProfileRows("MODEL4"))

	rec := httptest.NewRecorder()
	h.Calculate(rec, authedReq(http.MethodPost, "/api/v1/calories/calculate",
		`{"currentHeartRate":120,"durationMinutes":10,"method":"MODEL4"}`))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPnoeStatusWithoutProfile(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(emptyProfileRows())

	rec := httptest.NewRecorder()
	h.PnoeStatus(rec, authedReq(http.MethodGet, "/api/v1/pnoe/status", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		HasPnoeData      bool     `json:"hasPnoeData"`
		AvailableMethods []string `json:"availableMethods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.HasPnoeData)
	assert.Empty(t, resp.AvailableMethods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPnoeCoefficientsNullWithoutProfile(t *testing.T) {
	h, mock, done := newCalorieHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles`).
		WithArgs("u1").
		WillReturnRows(emptyProfileRows())

	rec := httptest.NewRecorder()
	h.PnoeCoefficients(rec, authedReq(http.MethodGet, "/api/v1/pnoe/coefficients", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
