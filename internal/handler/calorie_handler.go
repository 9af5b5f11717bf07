package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/metrics"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

type CalorieHandler struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.CalProfileRepository
}

func NewCalorieHandler(userRepo *repository.UserRepository, profileRepo *repository.CalProfileRepository) *CalorieHandler {
	return &CalorieHandler{userRepo: userRepo, profileRepo: profileRepo}
}

type calculateRequest struct {
	HeartRate       float64 `json:"currentHeartRate"`
	DurationMinutes float64 `json:"durationMinutes"`
	Method          *string `json:"method"`
}

type calculateResponse struct {
	CalculatedCalories float64 `json:"calculatedCalories"`
	Method             string  `json:"method"`
	HeartRate          float64 `json:"heartRate"`
	DurationMinutes    float64 `json:"durationMinutes"`
	HasPnoeData        bool    `json:"hasPnoeData"`
}

// Calculate estimates calories for a stretch of exercise. The method is
// resolved in order: explicit request override, the user's chosen method,
// then the most accurate method their metabolic test data supports. Users
// with no processed test data get the generic heart-rate fallback.
func (h *CalorieHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !service.ValidHeartRate(req.HeartRate) {
		writeError(w, http.StatusBadRequest, "heart rate must be between 0 and 300")
		return
	}

	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load calorie profile")
		return
	}

	available := service.AvailableMethods(profile)

	method, err := h.resolveMethod(userID, req.Method, profile, available)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve method")
		return
	}

	var calories float64
	if method == "" || profile == nil {
		calories = service.FallbackCalories(req.HeartRate, req.DurationMinutes)
		metrics.RecordCalorieCalculation("FALLBACK")
		writeJSON(w, http.StatusOK, calculateResponse{
			CalculatedCalories: calories,
			Method:             "FALLBACK",
			HeartRate:          req.HeartRate,
			DurationMinutes:    req.DurationMinutes,
			HasPnoeData:        false,
		})
		return
	}

	calories, err = service.CaloriesForMethod(method, profile, req.HeartRate, req.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMethodNotImplemented):
			writeError(w, http.StatusNotImplemented, err.Error())
		case errors.Is(err, service.ErrUnknownMethod):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	metrics.RecordCalorieCalculation(string(method))

	writeJSON(w, http.StatusOK, calculateResponse{
		CalculatedCalories: calories,
		Method:             string(method),
		HeartRate:          req.HeartRate,
		DurationMinutes:    req.DurationMinutes,
		HasPnoeData:        true,
	})
}

// resolveMethod returns "" when the user must fall back to the generic
// estimate. The profile's selected method wins over the users-row column:
// the processing pipeline writes the profile row whole, so its selection
// is always consistent with the fitted coefficient set.
func (h *CalorieHandler) resolveMethod(userID string, override *string, profile *domain.UserCalProfile, available []service.CalorieMethod) (service.CalorieMethod, error) {
	if len(available) == 0 {
		return "", nil
	}

	if override != nil && *override != "" {
		return service.CalorieMethod(*override), nil
	}

	if m := pickAvailable(profile.CalorieCountingMethod, available); m != "" {
		return m, nil
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user != nil {
		if m := pickAvailable(user.CalorieCountingMethod, available); m != "" {
			return m, nil
		}
	}

	method, err := service.RecommendedMethod(available)
	if errors.Is(err, service.ErrNoPersonalizedMethod) {
		return "", nil
	}
	return method, err
}

// pickAvailable returns the chosen method when it is one of the methods the
// fitted profile supports, "" otherwise.
func pickAvailable(chosen *string, available []service.CalorieMethod) service.CalorieMethod {
	if chosen == nil || *chosen == "" {
		return ""
	}
	m := service.CalorieMethod(*chosen)
	for _, a := range available {
		if a == m {
			return m
		}
	}
	return ""
}

// PnoeStatus reports whether the user's metabolic test data has been
// processed and which estimation methods that produced.
func (h *CalorieHandler) PnoeStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load calorie profile")
		return
	}

	if profile == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"hasPnoeData":      false,
			"lastProcessedAt":  nil,
			"availableMethods": []string{},
		})
		return
	}

	methods := profile.AvailableMethods
	if methods == nil {
		methods = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasPnoeData":      true,
		"lastProcessedAt":  profile.LastProcessedAt,
		"availableMethods": methods,
	})
}

// PnoeCoefficients returns the raw fitted profile, or null when the user
// has no processed test data.
func (h *CalorieHandler) PnoeCoefficients(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load calorie profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ReplaceCoefficients installs a freshly fitted profile for a user. The
// row is replaced whole; the coefficients form one fitted set and partial
// updates would mix sets. Admin only.
func (h *CalorieHandler) ReplaceCoefficients(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]

	user, err := h.userRepo.GetByID(targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var profile domain.UserCalProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile.UserID = targetID

	for _, raw := range profile.AvailableMethods {
		switch service.CalorieMethod(raw) {
		case service.Model1, service.Model2, service.Model3, service.Model4:
		default:
			writeError(w, http.StatusBadRequest, "unknown method in availableMethods: "+raw)
			return
		}
	}

	if err := h.profileRepo.Replace(&profile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to replace coefficients")
		return
	}

	writeJSON(w, http.StatusOK, &profile)
}
