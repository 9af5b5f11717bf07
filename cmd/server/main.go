package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/fizl-health/fizl-backend/internal/config"
	"github.com/fizl-health/fizl-backend/internal/db"
	"github.com/fizl-health/fizl-backend/internal/handler"
	"github.com/fizl-health/fizl-backend/internal/metrics"
	"github.com/fizl-health/fizl-backend/internal/middleware"
	"github.com/fizl-health/fizl-backend/internal/repository"
	"github.com/fizl-health/fizl-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable must be set")
	}

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	storage, err := service.NewS3Storage(context.Background(), cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	resetTokenRepo := repository.NewResetTokenRepository(database)
	profileRepo := repository.NewCalProfileRepository(database)
	workoutRepo := repository.NewWorkoutRepository(database)
	foodRepo := repository.NewFoodRepository(database)
	foodLogRepo := repository.NewFoodLogRepository(database)
	heartRateRepo := repository.NewHeartRateRepository(database)
	stepsRepo := repository.NewStepsRepository(database)
	bodyRepo := repository.NewBodyMeasurementRepository(database)
	vitalsRepo := repository.NewVitalSignsRepository(database)
	mobilityRepo := repository.NewMobilityRepository(database)
	fileRepo := repository.NewFileRepository(database)

	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom)

	authHandler := handler.NewAuthHandler(cfg.JWTSecret, userRepo, resetTokenRepo, emailService)
	userHandler := handler.NewUserHandler(userRepo, workoutRepo, foodLogRepo)
	calorieHandler := handler.NewCalorieHandler(userRepo, profileRepo)
	workoutHandler := handler.NewWorkoutHandler(workoutRepo, profileRepo)
	foodHandler := handler.NewFoodHandler(foodRepo, foodLogRepo)
	biometricsHandler := handler.NewBiometricsHandler(heartRateRepo, stepsRepo, bodyRepo, vitalsRepo, mobilityRepo)
	adminHandler := handler.NewAdminHandler(userRepo, fileRepo, storage)

	// Per-client rate limits on the credential endpoints
	loginRL := middleware.NewRateLimiter(1, 5)
	forgotPasswordRL := middleware.NewRateLimiter(0.2, 3)
	loginRL.StartCleanup(time.Hour)
	forgotPasswordRL.StartCleanup(time.Hour)

	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodyBytes(64 << 20))
	r.Use(middleware.Metrics)

	r.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.Handle("/auth/sign-up", http.HandlerFunc(authHandler.SignUp)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/sign-in", loginRL.Middleware(http.HandlerFunc(authHandler.SignIn))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/forgot-password", forgotPasswordRL.Middleware(http.HandlerFunc(authHandler.ForgotPassword))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/reset-password", http.HandlerFunc(authHandler.ResetPassword)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/verify-email", http.HandlerFunc(authHandler.VerifyEmail)).Methods(http.MethodPost, http.MethodOptions)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protected.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/auth/resend-verification", authHandler.ResendVerification).Methods(http.MethodPost, http.MethodOptions)

	protected.HandleFunc("/users/me", userHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/users/me/streaks", userHandler.Streaks).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/users/me/streaks/update", userHandler.UpdateStreaks).Methods(http.MethodPost, http.MethodOptions)

	protected.HandleFunc("/calories/calculate", calorieHandler.Calculate).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/pnoe/status", calorieHandler.PnoeStatus).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/pnoe/coefficients", calorieHandler.PnoeCoefficients).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/workouts", workoutHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/workouts", workoutHandler.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/workouts/hk/{hkId}", workoutHandler.DeleteByHkID).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/workouts/{id}", workoutHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/workouts/{id}", workoutHandler.Update).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/workouts/{id}", workoutHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/workouts/{id}/heart-rates", biometricsHandler.ListWorkoutHeartRates).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/foods", foodHandler.CreateFood).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/foods/search", foodHandler.SearchFoods).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/foods/recent", foodHandler.RecentFoods).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/foods/{id}", foodHandler.GetFood).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/food-logs", foodHandler.CreateLog).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/food-logs", foodHandler.ListLogs).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/food-logs/{id}", foodHandler.GetLog).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/food-logs/{id}", foodHandler.UpdateLog).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/food-logs/{id}", foodHandler.DeleteLog).Methods(http.MethodDelete, http.MethodOptions)

	protected.HandleFunc("/heart-rates", biometricsHandler.CreateHeartRates).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/heart-rates", biometricsHandler.ListHeartRates).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/steps", biometricsHandler.CreateSteps).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/steps", biometricsHandler.ListSteps).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/body-measurements", biometricsHandler.CreateBodyMeasurement).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/body-measurements", biometricsHandler.ListBodyMeasurements).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/body-measurements/latest", biometricsHandler.LatestBodyMeasurement).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/body-measurements/{id}", biometricsHandler.GetBodyMeasurement).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/body-measurements/{id}", biometricsHandler.UpdateBodyMeasurement).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/vital-signs", biometricsHandler.CreateVitalSigns).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/vital-signs", biometricsHandler.ListVitalSigns).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/vital-signs/latest", biometricsHandler.LatestVitalSigns).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/vital-signs/{id}", biometricsHandler.GetVitalSigns).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/vital-signs/{id}", biometricsHandler.UpdateVitalSigns).Methods(http.MethodPatch, http.MethodOptions)
	protected.HandleFunc("/mobility-metrics", biometricsHandler.CreateMobilityMetric).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/mobility-metrics", biometricsHandler.ListMobilityMetrics).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/mobility-metrics/{id}", biometricsHandler.GetMobilityMetric).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/mobility-metrics/{id}", biometricsHandler.UpdateMobilityMetric).Methods(http.MethodPatch, http.MethodOptions)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", adminHandler.ListUsers).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/users/{id}", adminHandler.GetUser).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods(http.MethodDelete, http.MethodOptions)
	admin.HandleFunc("/users/{id}/coefficients", calorieHandler.ReplaceCoefficients).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/users/{id}/files", adminHandler.UploadUserFile).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/users/{id}/files", adminHandler.ListUserFiles).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/files/{fileId}/url", adminHandler.FileURL).Methods(http.MethodGet, http.MethodOptions)
	admin.HandleFunc("/files/{fileId}", adminHandler.DeleteFile).Methods(http.MethodDelete, http.MethodOptions)

	c := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
	})

	addr := ":" + cfg.Port
	log.Printf("server starting on %s", addr)
	if err := http.ListenAndServe(addr, c.Handler(r)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
