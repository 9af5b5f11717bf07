package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/repository"
)

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	return nil
}

func (stubStorage) Delete(ctx context.Context, key string) error { return nil }

func (stubStorage) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

func newAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewAdminHandler(repository.NewUserRepository(db), repository.NewFileRepository(db), stubStorage{})
	return h, mock, func() { db.Close() }
}

func adminUserRows(id, role string) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "dob", "gender", "role",
		"calorie_counting_method", "email_verified",
		"current_workout_streak", "longest_workout_streak", "current_food_streak", "longest_food_streak",
		"last_workout_date", "last_food_log_date", "last_active_at", "created_at", "updated_at",
	}).AddRow(
		id, "a@b.com", "hash", "Ada", "Lovelace", nil, nil, role,
		nil, false,
		0, 0, 0, 0,
		nil, nil, now, now, now,
	)
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	h, mock, done := newAdminHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u1").
		WillReturnRows(adminUserRows("u1", "ADMIN"))

	req := authedReq(http.MethodDelete, "/admin/users/u1", "")
	req = mux.SetURLVars(req, map[string]string{"id": "u1"})
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserRefusesAdminTarget(t *testing.T) {
	h, mock, done := newAdminHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u2").
		WillReturnRows(adminUserRows("u2", "ADMIN"))

	req := authedReq(http.MethodDelete, "/admin/users/u2", "")
	req = mux.SetURLVars(req, map[string]string{"id": "u2"})
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserUnknownTarget(t *testing.T) {
	h, mock, done := newAdminHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := authedReq(http.MethodDelete, "/admin/users/u9", "")
	req = mux.SetURLVars(req, map[string]string{"id": "u9"})
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
