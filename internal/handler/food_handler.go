package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
)

type FoodHandler struct {
	foodRepo    *repository.FoodRepository
	foodLogRepo *repository.FoodLogRepository
}

func NewFoodHandler(foodRepo *repository.FoodRepository, foodLogRepo *repository.FoodLogRepository) *FoodHandler {
	return &FoodHandler{foodRepo: foodRepo, foodLogRepo: foodLogRepo}
}

// CreateFood adds a custom food owned by the caller. Foods with a nil
// user id are the shared catalog and are only seeded out of band.
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var food domain.Food
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if food.FoodName == "" {
		writeError(w, http.StatusBadRequest, "foodName is required")
		return
	}
	if food.Serving == "" {
		writeError(w, http.StatusBadRequest, "serving is required")
		return
	}
	if food.Calories < 0 {
		writeError(w, http.StatusBadRequest, "calories must not be negative")
		return
	}

	food.ID = ""
	food.UserID = &userID

	if err := h.foodRepo.Create(&food); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create food")
		return
	}

	writeJSON(w, http.StatusCreated, &food)
}

// SearchFoods matches the shared catalog plus the caller's custom foods.
func (h *FoodHandler) SearchFoods(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	query := r.URL.Query().Get("q")
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	foods, err := h.foodRepo.Search(userID, query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search foods")
		return
	}
	if foods == nil {
		foods = []domain.Food{}
	}

	writeJSON(w, http.StatusOK, foods)
}

// RecentFoods returns the foods the caller logged most recently, for the
// quick-add list.
func (h *FoodHandler) RecentFoods(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	foods, err := h.foodRepo.Recent(userID, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recent foods")
		return
	}
	if foods == nil {
		foods = []domain.Food{}
	}

	writeJSON(w, http.StatusOK, foods)
}

func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	food, err := h.foodRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get food")
		return
	}
	if food == nil {
		writeError(w, http.StatusNotFound, "food not found")
		return
	}

	writeJSON(w, http.StatusOK, food)
}

type createFoodLogRequest struct {
	FoodID      string      `json:"foodId"`
	Servings    float64     `json:"servings"`
	ServingSize *string     `json:"servingSize"`
	Meal        domain.Meal `json:"meal"`
	Date        time.Time   `json:"date"`
}

func (h *FoodHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req createFoodLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FoodID == "" {
		writeError(w, http.StatusBadRequest, "foodId is required")
		return
	}
	if !req.Meal.Valid() {
		writeError(w, http.StatusBadRequest, "meal must be BREAKFAST, LUNCH, DINNER or SNACK")
		return
	}
	if req.Servings <= 0 {
		writeError(w, http.StatusBadRequest, "servings must be positive")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	food, err := h.foodRepo.GetByID(req.FoodID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get food")
		return
	}
	if food == nil {
		writeError(w, http.StatusNotFound, "food not found")
		return
	}

	fl := &domain.FoodLog{
		UserID:      userID,
		FoodID:      req.FoodID,
		Servings:    req.Servings,
		ServingSize: req.ServingSize,
		Meal:        req.Meal,
		Date:        req.Date,
	}
	if err := h.foodLogRepo.Create(fl); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create food log")
		return
	}
	fl.Food = food

	writeJSON(w, http.StatusCreated, fl)
}

func (h *FoodHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	logs, total, err := h.foodLogRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list food logs")
		return
	}
	if logs == nil {
		logs = []domain.FoodLog{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: logs, Page: page, Limit: limit, Total: total})
}

func (h *FoodHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	fl, err := h.foodLogRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get food log")
		return
	}
	if fl == nil {
		writeError(w, http.StatusNotFound, "food log not found")
		return
	}

	writeJSON(w, http.StatusOK, fl)
}

func (h *FoodHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	var body struct {
		Servings    *float64     `json:"servings"`
		ServingSize *string      `json:"servingSize"`
		Meal        *domain.Meal `json:"meal"`
		Date        *time.Time   `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.Servings != nil {
		if *body.Servings <= 0 {
			writeError(w, http.StatusBadRequest, "servings must be positive")
			return
		}
		fields["servings"] = *body.Servings
	}
	if body.ServingSize != nil {
		fields["serving_size"] = *body.ServingSize
	}
	if body.Meal != nil {
		if !body.Meal.Valid() {
			writeError(w, http.StatusBadRequest, "meal must be BREAKFAST, LUNCH, DINNER or SNACK")
			return
		}
		fields["meal"] = *body.Meal
	}
	if body.Date != nil {
		fields["date"] = body.Date.UTC()
	}

	if err := h.foodLogRepo.Update(userID, id, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update food log")
		return
	}

	fl, err := h.foodLogRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get food log")
		return
	}
	if fl == nil {
		writeError(w, http.StatusNotFound, "food log not found")
		return
	}

	writeJSON(w, http.StatusOK, fl)
}

func (h *FoodHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	deleted, err := h.foodLogRepo.Delete(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete food log")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "food log not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "food log deleted"})
}
