package domain

import "time"

type WorkoutSource string

const (
	SourceHealthKit WorkoutSource = "HEALTHKIT"
	SourceManual    WorkoutSource = "MANUAL"
)

type Workout struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"userId"`
	HkID                  *string       `json:"hkId"`
	ActivityType          string        `json:"activityType"`
	StartDate             time.Time     `json:"startDate"`
	EndDate               time.Time     `json:"endDate"`
	TotalDistanceMeters   float64       `json:"totalDistanceMeters"`
	TotalEnergyBurnedKcal float64       `json:"totalEnergyBurnedKcal"`
	DurationSeconds       float64       `json:"workoutDurationSeconds"`
	AverageHeartRateBPM   *float64      `json:"averageHeartRateBPM"`
	HighestHeartRate      *float64      `json:"highestHeartRate"`
	LowestHeartRate       *float64      `json:"lowestHeartRate"`
	FirstHeartRateTime    *time.Time    `json:"firstHeartRateTime"`
	LastHeartRateTime     *time.Time    `json:"lastHeartRateTime"`
	Source                WorkoutSource `json:"source"`
	IsDeleted             bool          `json:"isDeleted"`
	DeletedAt             *time.Time    `json:"deletedAt"`
	Model1Kcal            *float64      `json:"MODEL1"`
	Model2Kcal            *float64      `json:"MODEL2"`
	Model3Kcal            *float64      `json:"MODEL3"`
	Model4Kcal            *float64      `json:"MODEL4"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}
