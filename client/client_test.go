package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientReturnsSessionExpiredOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid or expired token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("stale"))
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"heart rate must be between 0 and 300"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	_, err := c.CalculateCalories(context.Background(), 500, 10)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "heart rate must be between 0 and 300", apiErr.Message)
}

func TestClientSendsCurrentHeartRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Contains(t, body, "currentHeartRate")
		assert.InDelta(t, 120.0, body["currentHeartRate"], 1e-9)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calculatedCalories":180,"method":"FALLBACK","heartRate":120,"durationMinutes":30,"hasPnoeData":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	result, err := c.CalculateCalories(context.Background(), 120, 30)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, result.CalculatedCalories, 1e-9)
	assert.InDelta(t, 120.0, result.HeartRate, 1e-9)
}

func TestClientUnwrapsStreaksEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/me/streaks/update", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"streaks":{"currentWorkoutStreak":3,"longestWorkoutStreak":5,"currentFoodStreak":1,"longestFoodStreak":2}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	streaks, err := c.UpdateStreaks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, streaks.CurrentWorkoutStreak)
	assert.Equal(t, 5, streaks.LongestWorkoutStreak)
}

func TestClientStoresTokenAfterSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/sign-in", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"fresh-token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.SignIn(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", resp.Token)
	assert.Equal(t, "fresh-token", c.token)
}
