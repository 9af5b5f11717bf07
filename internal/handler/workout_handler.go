package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/metrics"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

type WorkoutHandler struct {
	workoutRepo *repository.WorkoutRepository
	profileRepo *repository.CalProfileRepository
}

func NewWorkoutHandler(workoutRepo *repository.WorkoutRepository, profileRepo *repository.CalProfileRepository) *WorkoutHandler {
	return &WorkoutHandler{workoutRepo: workoutRepo, profileRepo: profileRepo}
}

func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var workout domain.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if workout.ActivityType == "" {
		writeError(w, http.StatusBadRequest, "activityType is required")
		return
	}
	if workout.StartDate.IsZero() || workout.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	if workout.EndDate.Before(workout.StartDate) {
		writeError(w, http.StatusBadRequest, "endDate must not be before startDate")
		return
	}

	workout.ID = ""
	workout.UserID = userID
	if workout.DurationSeconds == 0 {
		workout.DurationSeconds = workout.EndDate.Sub(workout.StartDate).Seconds()
	}
	if workout.HkID != nil {
		workout.Source = domain.SourceHealthKit
	}

	h.attachModelEstimates(&workout)

	if err := h.workoutRepo.Create(&workout); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create workout")
		return
	}
	if workout.Source == domain.SourceHealthKit {
		metrics.RecordHealthKitSamples("workout", 1)
	}

	writeJSON(w, http.StatusCreated, &workout)
}

// attachModelEstimates precomputes every available personalized estimate so
// clients can switch methods without re-fetching. Requires an average heart
// rate in range and a fitted profile; silently skips otherwise.
func (h *WorkoutHandler) attachModelEstimates(workout *domain.Workout) {
	if workout.AverageHeartRateBPM == nil || !service.ValidHeartRate(*workout.AverageHeartRateBPM) {
		return
	}

	profile, err := h.profileRepo.GetByUserID(workout.UserID)
	if err != nil {
		log.Printf("[workouts] failed to load profile for %s: %v", workout.UserID, err)
		return
	}
	if profile == nil {
		return
	}

	hr := *workout.AverageHeartRateBPM
	minutes := workout.DurationSeconds / 60

	for _, m := range service.AvailableMethods(profile) {
		kcal, err := service.CaloriesForMethod(m, profile, hr, minutes)
		if err != nil {
			continue
		}
		v := kcal
		switch m {
		case service.Model1:
			workout.Model1Kcal = &v
		case service.Model2:
			workout.Model2Kcal = &v
		case service.Model3:
			workout.Model3Kcal = &v
		case service.Model4:
			workout.Model4Kcal = &v
		}
	}
}

func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, limit := parsePaging(r)

	workouts, total, err := h.workoutRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list workouts")
		return
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: workouts, Page: page, Limit: limit, Total: total})
}

func (h *WorkoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	workout, err := h.workoutRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get workout")
		return
	}
	if workout == nil || workout.IsDeleted {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	writeJSON(w, http.StatusOK, workout)
}

func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	existing, err := h.workoutRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get workout")
		return
	}
	if existing == nil || existing.IsDeleted {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	var body struct {
		ActivityType          *string    `json:"activityType"`
		StartDate             *time.Time `json:"startDate"`
		EndDate               *time.Time `json:"endDate"`
		TotalDistanceMeters   *float64   `json:"totalDistanceMeters"`
		TotalEnergyBurnedKcal *float64   `json:"totalEnergyBurnedKcal"`
		DurationSeconds       *float64   `json:"workoutDurationSeconds"`
		AverageHeartRateBPM   *float64   `json:"averageHeartRateBPM"`
		HighestHeartRate      *float64   `json:"highestHeartRate"`
		LowestHeartRate       *float64   `json:"lowestHeartRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.ActivityType != nil {
		fields["activity_type"] = *body.ActivityType
	}
	if body.StartDate != nil {
		fields["start_date"] = body.StartDate.UTC()
	}
	if body.EndDate != nil {
		fields["end_date"] = body.EndDate.UTC()
	}
	if body.TotalDistanceMeters != nil {
		fields["total_distance_meters"] = *body.TotalDistanceMeters
	}
	if body.TotalEnergyBurnedKcal != nil {
		fields["total_energy_burned_kcal"] = *body.TotalEnergyBurnedKcal
	}
	if body.DurationSeconds != nil {
		fields["duration_seconds"] = *body.DurationSeconds
	}
	if body.AverageHeartRateBPM != nil {
		fields["average_heart_rate_bpm"] = *body.AverageHeartRateBPM
	}
	if body.HighestHeartRate != nil {
		fields["highest_heart_rate"] = *body.HighestHeartRate
	}
	if body.LowestHeartRate != nil {
		fields["lowest_heart_rate"] = *body.LowestHeartRate
	}

	if err := h.workoutRepo.Update(userID, id, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update workout")
		return
	}

	workout, err := h.workoutRepo.GetByID(userID, id)
	if err != nil || workout == nil {
		writeError(w, http.StatusInternalServerError, "failed to get workout")
		return
	}

	writeJSON(w, http.StatusOK, workout)
}

// Delete soft-deletes; the row stays for audit but drops out of listings
// and streak computation.
func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	deleted, err := h.workoutRepo.SoftDelete(userID, id, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete workout")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "workout deleted"})
}

// DeleteByHkID removes a workout by its HealthKit identifier. Mobile
// clients use this when the user deletes a workout in Apple Health.
func (h *WorkoutHandler) DeleteByHkID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	hkID := mux.Vars(r)["hkId"]

	deleted, err := h.workoutRepo.SoftDeleteByHkID(userID, hkID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete workout")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "workout deleted"})
}

func parsePaging(r *http.Request) (page, limit int) {
	page, limit = 1, 50
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	return page, limit
}

func parseDateRange(r *http.Request) (from, to *time.Time, err error) {
	parse := func(name string) (*time.Time, error) {
		v := r.URL.Query().Get(name)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse("2006-01-02", v)
			if err != nil {
				return nil, err
			}
		}
		return &t, nil
	}
	from, err = parse("from")
	if err != nil {
		return nil, nil, err
	}
	to, err = parse("to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
