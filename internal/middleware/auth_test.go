package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, token, header string) *httptest.ResponseRecorder {
	t.Helper()

	var gotUserID string
	var gotRole domain.UserRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		gotRole = Role(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if token != "" {
		req.Header.Set(header, token)
	}
	rec := httptest.NewRecorder()

	AuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		assert.NotEmpty(t, gotUserID)
		assert.NotEmpty(t, gotRole)
	}
	return rec
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", domain.RoleUser, testSecret)
	require.NoError(t, err)

	rec := authedRequest(t, "Bearer "+token, "Authorization")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareAPIKeyHeader(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", domain.RoleUser, testSecret)
	require.NoError(t, err)

	rec := authedRequest(t, token, "X-API-Key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec := authedRequest(t, "", "Authorization")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedBearer(t *testing.T) {
	rec := authedRequest(t, "NotBearer abc", "Authorization")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", domain.RoleUser, "other-secret")
	require.NoError(t, err)

	rec := authedRequest(t, "Bearer "+token, "Authorization")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	token, err := GenerateToken("admin-1", "admin@b.com", domain.RoleAdmin, testSecret)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(testSecret)(RequireAdmin(next))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsUser(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", domain.RoleUser, testSecret)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(testSecret)(RequireAdmin(next))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
