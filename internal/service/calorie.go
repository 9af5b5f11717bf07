package service

import (
	"errors"
	"math"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type CalorieMethod string

const (
	Model1 CalorieMethod = "MODEL1"
	Model2 CalorieMethod = "MODEL2"
	Model3 CalorieMethod = "MODEL3"
	Model4 CalorieMethod = "MODEL4"
)

// methodPriority orders methods by accuracy, best first.
var methodPriority = []CalorieMethod{Model1, Model2, Model3, Model4}

var (
	ErrInvalidHeartRate     = errors.New("heart rate must be between 0 and 300")
	ErrMethodNotImplemented = errors.New("calorie counting method not implemented")
	ErrUnknownMethod        = errors.New("unknown calorie counting method")
	ErrNoPersonalizedMethod = errors.New("no personalized calorie method available")
)

func ValidHeartRate(heartRate float64) bool {
	return heartRate > 0 && heartRate < 300
}

// CaloriesByModel1 predicts VO2 and RER from heart rate and converts to
// energy expenditure via the Weir equation constants. The 0.9 kcal/min floor
// keeps low heart rates from producing non-physical near-zero rates.
func CaloriesByModel1(p *domain.UserCalProfile, heartRate, duration float64) float64 {
	predictedVo2 := p.HrVo2Slope*heartRate + p.HrVo2Intercept
	predictedRer := p.HrRerSlope*heartRate + p.HrRerIntercept

	kcalPerMin := math.Max(0.9, (predictedVo2/1000)*(3.941+1.106*predictedRer))

	return kcalPerMin / 60 * duration
}

// CaloriesByModel2 regresses energy expenditure directly on heart rate.
func CaloriesByModel2(p *domain.UserCalProfile, heartRate, duration float64) float64 {
	kcalPerMin := math.Max(0.9, heartRate*p.HrEeSlope+p.HrEeIntercept)

	return kcalPerMin / 60 * duration
}

// CaloriesByModel3 shares MODEL1's VO2/RER prediction but applies the
// O2-RER cross term instead of the fixed Weir constants.
func CaloriesByModel3(p *domain.UserCalProfile, heartRate, duration float64) float64 {
	predictedVo2 := p.HrVo2Slope*heartRate + p.HrVo2Intercept
	predictedRer := p.HrRerSlope*heartRate + p.HrRerIntercept

	kcalPerMin := math.Max(0.9, (predictedVo2/1000)*(p.O2RerIntercept+p.O2RerSlope*predictedRer))

	return kcalPerMin / 60 * duration
}

// FallbackCalories is the non-personalized estimate used when a user has no
// fitted profile. The same formula ships in the client so offline behavior
// matches the server.
func FallbackCalories(heartRate, durationMinutes float64) float64 {
	perMinute := math.Max(1, (heartRate-60)*0.1)
	return perMinute * durationMinutes
}

// CaloriesForMethod dispatches to the model selected for the user.
//
// Duration is passed straight through to the kcalPerMin/60*duration formula
// in whatever unit the caller supplies; negative or zero duration is not
// rejected and simply yields a non-positive result.
func CaloriesForMethod(method CalorieMethod, p *domain.UserCalProfile, heartRate, duration float64) (float64, error) {
	if !ValidHeartRate(heartRate) {
		return 0, ErrInvalidHeartRate
	}

	switch method {
	case Model1:
		return CaloriesByModel1(p, heartRate, duration), nil
	case Model2:
		return CaloriesByModel2(p, heartRate, duration), nil
	case Model3:
		return CaloriesByModel3(p, heartRate, duration), nil
	case Model4:
		// MODEL4 exists in the method enumeration but has no formula yet.
		return 0, ErrMethodNotImplemented
	default:
		return 0, ErrUnknownMethod
	}
}

// RecommendedMethod picks the most accurate method the user has processed
// source data for. Returns ErrNoPersonalizedMethod when the list is empty,
// signaling callers to use FallbackCalories.
func RecommendedMethod(available []CalorieMethod) (CalorieMethod, error) {
	if len(available) == 0 {
		return "", ErrNoPersonalizedMethod
	}
	for _, m := range methodPriority {
		for _, a := range available {
			if a == m {
				return m, nil
			}
		}
	}
	return available[0], nil
}

// AvailableMethods converts the profile's stored method list, dropping
// anything that is not a known method name.
func AvailableMethods(p *domain.UserCalProfile) []CalorieMethod {
	if p == nil {
		return nil
	}
	var methods []CalorieMethod
	for _, raw := range p.AvailableMethods {
		m := CalorieMethod(raw)
		switch m {
		case Model1, Model2, Model3, Model4:
			methods = append(methods, m)
		}
	}
	return methods
}
