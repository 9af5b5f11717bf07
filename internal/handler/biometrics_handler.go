package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fizl-health/fizl-backend/internal/domain"
	"github.com/fizl-health/fizl-backend/internal/metrics"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

// BiometricsHandler serves the HealthKit-sourced measurement streams:
// heart rate samples, step counts, body measurements, vital signs and
// mobility metrics.
type BiometricsHandler struct {
	heartRateRepo *repository.HeartRateRepository
	stepsRepo     *repository.StepsRepository
	bodyRepo      *repository.BodyMeasurementRepository
	vitalsRepo    *repository.VitalSignsRepository
	mobilityRepo  *repository.MobilityRepository
}

func NewBiometricsHandler(
	heartRateRepo *repository.HeartRateRepository,
	stepsRepo *repository.StepsRepository,
	bodyRepo *repository.BodyMeasurementRepository,
	vitalsRepo *repository.VitalSignsRepository,
	mobilityRepo *repository.MobilityRepository,
) *BiometricsHandler {
	return &BiometricsHandler{
		heartRateRepo: heartRateRepo,
		stepsRepo:     stepsRepo,
		bodyRepo:      bodyRepo,
		vitalsRepo:    vitalsRepo,
		mobilityRepo:  mobilityRepo,
	}
}

// CreateHeartRates ingests a batch of samples. Samples whose HealthKit id
// was already synced are skipped, so re-syncing the same window is safe.
func (h *BiometricsHandler) CreateHeartRates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var samples []domain.HeartRate
	if err := json.NewDecoder(r.Body).Decode(&samples); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusBadRequest, "at least one sample is required")
		return
	}
	for _, s := range samples {
		if !service.ValidHeartRate(s.HeartRateBPM) {
			writeError(w, http.StatusBadRequest, "heart rate must be between 0 and 300")
			return
		}
	}

	inserted, err := h.heartRateRepo.CreateBulk(userID, samples)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save heart rates")
		return
	}
	metrics.RecordHealthKitSamples("heart_rate", inserted)

	writeJSON(w, http.StatusCreated, map[string]int{"inserted": inserted})
}

func (h *BiometricsHandler) ListHeartRates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	samples, total, err := h.heartRateRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list heart rates")
		return
	}
	if samples == nil {
		samples = []domain.HeartRate{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: samples, Page: page, Limit: limit, Total: total})
}

func (h *BiometricsHandler) ListWorkoutHeartRates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	workoutID := mux.Vars(r)["id"]

	samples, err := h.heartRateRepo.ListByWorkout(userID, workoutID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list heart rates")
		return
	}
	if samples == nil {
		samples = []domain.HeartRate{}
	}

	writeJSON(w, http.StatusOK, samples)
}

func (h *BiometricsHandler) CreateSteps(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var entries []domain.StepEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusBadRequest, "at least one entry is required")
		return
	}
	for _, e := range entries {
		if e.StepCount < 0 {
			writeError(w, http.StatusBadRequest, "stepCount must not be negative")
			return
		}
	}

	inserted, err := h.stepsRepo.CreateBulk(userID, entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save steps")
		return
	}
	metrics.RecordHealthKitSamples("steps", inserted)

	writeJSON(w, http.StatusCreated, map[string]int{"inserted": inserted})
}

func (h *BiometricsHandler) ListSteps(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	entries, total, err := h.stepsRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list steps")
		return
	}
	if entries == nil {
		entries = []domain.StepEntry{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: entries, Page: page, Limit: limit, Total: total})
}

func (h *BiometricsHandler) CreateBodyMeasurement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var m domain.BodyMeasurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	m.ID = ""
	m.UserID = userID
	if err := h.bodyRepo.Create(&m); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save body measurement")
		return
	}

	writeJSON(w, http.StatusCreated, &m)
}

func (h *BiometricsHandler) ListBodyMeasurements(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	measurements, total, err := h.bodyRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list body measurements")
		return
	}
	if measurements == nil {
		measurements = []domain.BodyMeasurement{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: measurements, Page: page, Limit: limit, Total: total})
}

func (h *BiometricsHandler) GetBodyMeasurement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	m, err := h.bodyRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get body measurement")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "body measurement not found")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *BiometricsHandler) UpdateBodyMeasurement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	existing, err := h.bodyRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get body measurement")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "body measurement not found")
		return
	}

	var body struct {
		Date              *time.Time `json:"date"`
		WeightKg          *float64   `json:"weightKg"`
		HeightCm          *float64   `json:"heightCm"`
		BodyFatPercentage *float64   `json:"bodyFatPercentage"`
		LeanBodyMassKg    *float64   `json:"leanBodyMassKg"`
		WaistCm           *float64   `json:"waistCm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.Date != nil {
		fields["date"] = body.Date.UTC()
	}
	if body.WeightKg != nil {
		fields["weight_kg"] = *body.WeightKg
	}
	if body.HeightCm != nil {
		fields["height_cm"] = *body.HeightCm
	}
	if body.BodyFatPercentage != nil {
		fields["body_fat_percentage"] = *body.BodyFatPercentage
	}
	if body.LeanBodyMassKg != nil {
		fields["lean_body_mass_kg"] = *body.LeanBodyMassKg
	}
	if body.WaistCm != nil {
		fields["waist_cm"] = *body.WaistCm
	}

	if err := h.bodyRepo.Update(userID, id, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update body measurement")
		return
	}

	updated, err := h.bodyRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get body measurement")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *BiometricsHandler) LatestBodyMeasurement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	m, err := h.bodyRepo.Latest(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get body measurement")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *BiometricsHandler) CreateVitalSigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var v domain.VitalSigns
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if v.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	v.ID = ""
	v.UserID = userID
	if err := h.vitalsRepo.Create(&v); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save vital signs")
		return
	}

	writeJSON(w, http.StatusCreated, &v)
}

func (h *BiometricsHandler) ListVitalSigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	vitals, total, err := h.vitalsRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list vital signs")
		return
	}
	if vitals == nil {
		vitals = []domain.VitalSigns{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: vitals, Page: page, Limit: limit, Total: total})
}

func (h *BiometricsHandler) LatestVitalSigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	v, err := h.vitalsRepo.Latest(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get vital signs")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (h *BiometricsHandler) GetVitalSigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	v, err := h.vitalsRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get vital signs")
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "vital signs not found")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (h *BiometricsHandler) UpdateVitalSigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	existing, err := h.vitalsRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get vital signs")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "vital signs not found")
		return
	}

	var body struct {
		Date                   *time.Time `json:"date"`
		SystolicMmHg           *float64   `json:"systolicMmHg"`
		DiastolicMmHg          *float64   `json:"diastolicMmHg"`
		RespiratoryRate        *float64   `json:"respiratoryRate"`
		OxygenSaturationPct    *float64   `json:"oxygenSaturationPct"`
		BodyTemperatureCelsius *float64   `json:"bodyTemperatureCelsius"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.Date != nil {
		fields["date"] = body.Date.UTC()
	}
	if body.SystolicMmHg != nil {
		fields["systolic_mmhg"] = *body.SystolicMmHg
	}
	if body.DiastolicMmHg != nil {
		fields["diastolic_mmhg"] = *body.DiastolicMmHg
	}
	if body.RespiratoryRate != nil {
		fields["respiratory_rate"] = *body.RespiratoryRate
	}
	if body.OxygenSaturationPct != nil {
		fields["oxygen_saturation_pct"] = *body.OxygenSaturationPct
	}
	if body.BodyTemperatureCelsius != nil {
		fields["body_temperature_celsius"] = *body.BodyTemperatureCelsius
	}

	if err := h.vitalsRepo.Update(userID, id, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update vital signs")
		return
	}

	updated, err := h.vitalsRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get vital signs")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *BiometricsHandler) CreateMobilityMetric(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var m domain.MobilityMetric
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	m.ID = ""
	m.UserID = userID
	if err := h.mobilityRepo.Create(&m); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save mobility metric")
		return
	}

	writeJSON(w, http.StatusCreated, &m)
}

func (h *BiometricsHandler) ListMobilityMetrics(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date in from/to")
		return
	}
	page, limit := parsePaging(r)

	mobility, total, err := h.mobilityRepo.List(userID, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list mobility metrics")
		return
	}
	if mobility == nil {
		mobility = []domain.MobilityMetric{}
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: mobility, Page: page, Limit: limit, Total: total})
}

func (h *BiometricsHandler) GetMobilityMetric(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	m, err := h.mobilityRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get mobility metric")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "mobility metric not found")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *BiometricsHandler) UpdateMobilityMetric(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := mux.Vars(r)["id"]

	existing, err := h.mobilityRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get mobility metric")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "mobility metric not found")
		return
	}

	var body struct {
		Date                *time.Time `json:"date"`
		WalkingSpeedMs      *float64   `json:"walkingSpeedMs"`
		StepLengthCm        *float64   `json:"stepLengthCm"`
		DoubleSupportPct    *float64   `json:"doubleSupportPct"`
		WalkingAsymmetryPct *float64   `json:"walkingAsymmetryPct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if body.Date != nil {
		fields["date"] = body.Date.UTC()
	}
	if body.WalkingSpeedMs != nil {
		fields["walking_speed_ms"] = *body.WalkingSpeedMs
	}
	if body.StepLengthCm != nil {
		fields["step_length_cm"] = *body.StepLengthCm
	}
	if body.DoubleSupportPct != nil {
		fields["double_support_pct"] = *body.DoubleSupportPct
	}
	if body.WalkingAsymmetryPct != nil {
		fields["walking_asymmetry_pct"] = *body.WalkingAsymmetryPct
	}

	if err := h.mobilityRepo.Update(userID, id, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update mobility metric")
		return
	}

	updated, err := h.mobilityRepo.GetByID(userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get mobility metric")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
