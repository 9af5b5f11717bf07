package domain

import "time"

type HeartRate struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	WorkoutID    *string   `json:"workoutId"`
	HkID         *string   `json:"hkId"`
	Timestamp    time.Time `json:"timestamp"`
	HeartRateBPM float64   `json:"heartRateBPM"`
	CreatedAt    time.Time `json:"createdAt"`
}

type StepEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	HkID      *string   `json:"hkId"`
	Date      time.Time `json:"date"`
	StepCount int       `json:"stepCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type BodyMeasurement struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Date              time.Time `json:"date"`
	WeightKg          *float64  `json:"weightKg"`
	HeightCm          *float64  `json:"heightCm"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage"`
	LeanBodyMassKg    *float64  `json:"leanBodyMassKg"`
	WaistCm           *float64  `json:"waistCm"`
	CreatedAt         time.Time `json:"createdAt"`
}

type VitalSigns struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"userId"`
	Date                   time.Time `json:"date"`
	SystolicMmHg           *float64  `json:"systolicMmHg"`
	DiastolicMmHg          *float64  `json:"diastolicMmHg"`
	RespiratoryRate        *float64  `json:"respiratoryRate"`
	OxygenSaturationPct    *float64  `json:"oxygenSaturationPct"`
	BodyTemperatureCelsius *float64  `json:"bodyTemperatureCelsius"`
	CreatedAt              time.Time `json:"createdAt"`
}

type MobilityMetric struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Date                time.Time `json:"date"`
	WalkingSpeedMs      *float64  `json:"walkingSpeedMs"`
	StepLengthCm        *float64  `json:"stepLengthCm"`
	DoubleSupportPct    *float64  `json:"doubleSupportPct"`
	WalkingAsymmetryPct *float64  `json:"walkingAsymmetryPct"`
	CreatedAt           time.Time `json:"createdAt"`
}
