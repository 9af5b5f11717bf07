package domain

import "time"

// UserCalProfile holds the regression coefficients fitted from a user's
// metabolic test data. The coefficients are only meaningful as one fitted
// set; the profile row is always replaced whole, never patched per column.
type UserCalProfile struct {
	ID                       string     `json:"id"`
	UserID                   string     `json:"userId"`
	EstimatedVo2Max          float64    `json:"estimatedVo2Max"`
	Vo2EfficiencyCoefficient float64    `json:"vo2EfficiencyCoefficient"`
	RestingMetabolicRate     *float64   `json:"restingMetabolicRate"`
	HrVo2Slope               float64    `json:"hrVo2Slope"`
	HrVo2Intercept           float64    `json:"hrVo2Intercept"`
	HrRerSlope               float64    `json:"hrRerSlope"`
	HrRerIntercept           float64    `json:"hrRerIntercept"`
	HrEeSlope                float64    `json:"hrEeSlope"`
	HrEeIntercept            float64    `json:"hrEeIntercept"`
	O2RerSlope               float64    `json:"o2RerSlope"`
	O2RerIntercept           float64    `json:"o2RerIntercept"`
	CalorieCountingMethod    *string    `json:"calorieCountingMethod"`
	AvailableMethods         []string   `json:"availableMethods"`
	LastProcessedAt          *time.Time `json:"lastProcessedAt"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}
