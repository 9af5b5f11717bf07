// Package client is a typed Go client for the Fizl API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

// ErrSessionExpired is returned when the server rejects the client's token.
// Callers decide how to react (re-authenticate, prompt the user); the client
// itself never clears its own state.
var ErrSessionExpired = errors.New("session expired")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		message := string(respBody)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/sign-up", nil, req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	req := domain.SignInRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/sign-in", nil, req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type CalorieResult struct {
	CalculatedCalories float64 `json:"calculatedCalories"`
	Method             string  `json:"method"`
	HeartRate          float64 `json:"heartRate"`
	DurationMinutes    float64 `json:"durationMinutes"`
	HasPnoeData        bool    `json:"hasPnoeData"`
}

func (c *Client) CalculateCalories(ctx context.Context, heartRate, durationMinutes float64) (*CalorieResult, error) {
	var result CalorieResult
	body := map[string]float64{"currentHeartRate": heartRate, "durationMinutes": durationMinutes}
	if err := c.do(ctx, http.MethodPost, "/calories/calculate", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	var created domain.Workout
	if err := c.do(ctx, http.MethodPost, "/workouts", nil, workout, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type WorkoutPage struct {
	Data  []domain.Workout `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}

func (c *Client) ListWorkouts(ctx context.Context, page, limit int) (*WorkoutPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var result WorkoutPage
	if err := c.do(ctx, http.MethodGet, "/workouts", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateStreaks(ctx context.Context) (*domain.StreakData, error) {
	var resp struct {
		Streaks domain.StreakData `json:"streaks"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/me/streaks/update", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Streaks, nil
}

func (c *Client) LogFood(ctx context.Context, foodID string, servings float64, meal domain.Meal, date time.Time) (*domain.FoodLog, error) {
	body := map[string]interface{}{
		"foodId":   foodID,
		"servings": servings,
		"meal":     meal,
		"date":     date,
	}
	var fl domain.FoodLog
	if err := c.do(ctx, http.MethodPost, "/food-logs", nil, body, &fl); err != nil {
		return nil, err
	}
	return &fl, nil
}

func (c *Client) SearchFoods(ctx context.Context, q string, limit int) ([]domain.Food, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))

	var foods []domain.Food
	if err := c.do(ctx, http.MethodGet, "/foods/search", query, nil, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}
