package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/metrics"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

type UserHandler struct {
	userRepo    *repository.UserRepository
	workoutRepo *repository.WorkoutRepository
	foodLogRepo *repository.FoodLogRepository
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	workoutRepo *repository.WorkoutRepository,
	foodLogRepo *repository.FoodLogRepository,
) *UserHandler {
	return &UserHandler{
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		foodLogRepo: foodLogRepo,
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial update. Unknown fields are ignored rather than
// rejected so older clients keep working.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var body struct {
		Email                 *string `json:"email"`
		FirstName             *string `json:"firstName"`
		LastName              *string `json:"lastName"`
		DOB                   *string `json:"dob"`
		Gender                *string `json:"gender"`
		CalorieCountingMethod *string `json:"calorieCountingMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.Email != nil {
		fields["email"] = *body.Email
	}
	if body.FirstName != nil {
		fields["first_name"] = *body.FirstName
	}
	if body.LastName != nil {
		fields["last_name"] = *body.LastName
	}
	if body.DOB != nil {
		dob, err := time.Parse("2006-01-02", *body.DOB)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dob must be YYYY-MM-DD")
			return
		}
		fields["dob"] = dob
	}
	if body.Gender != nil {
		fields["gender"] = *body.Gender
	}
	if body.CalorieCountingMethod != nil {
		method := service.CalorieMethod(*body.CalorieCountingMethod)
		switch method {
		case service.Model1, service.Model2, service.Model3, service.Model4:
		default:
			writeError(w, http.StatusBadRequest, "unknown calorie counting method")
			return
		}
		fields["calorie_counting_method"] = *body.CalorieCountingMethod
	}

	if err := h.userRepo.Update(userID, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type streaksResponse struct {
	Streaks domain.StreakData `json:"streaks"`
}

// Streaks returns the cached counters without recomputing.
func (h *UserHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get streaks")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, streaksResponse{Streaks: domain.StreakData{
		CurrentWorkoutStreak: user.CurrentWorkoutStreak,
		LongestWorkoutStreak: user.LongestWorkoutStreak,
		CurrentFoodStreak:    user.CurrentFoodStreak,
		LongestFoodStreak:    user.LongestFoodStreak,
		LastWorkoutDate:      user.LastWorkoutDate,
		LastFoodLogDate:      user.LastFoodLogDate,
		LastActiveAt:         &user.LastActiveAt,
	}})
}

// UpdateStreaks recomputes both streaks from the full activity history and
// persists the result. Clients call this after syncing workouts or logging
// food; recomputation is idempotent so duplicate calls are harmless.
func (h *UserHandler) UpdateStreaks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	workoutTimes, err := h.workoutRepo.ActiveStartTimes(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load workout history")
		return
	}
	foodTimes, err := h.foodLogRepo.LogTimes(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load food log history")
		return
	}

	now := time.Now().UTC()
	streaks := service.ComputeStreaks(workoutTimes, foodTimes, now)

	if err := h.userRepo.UpdateStreaks(userID, streaks, now); err != nil {
		log.Printf("[streaks] failed to persist streaks for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to update streaks")
		return
	}
	metrics.RecordStreakUpdate()

	writeJSON(w, http.StatusOK, streaksResponse{Streaks: streaks})
}
