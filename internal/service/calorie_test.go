package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

func testProfile() *domain.UserCalProfile {
	return &domain.UserCalProfile{
		HrVo2Slope:     12.5,
		HrVo2Intercept: 300,
		HrRerSlope:     0.003,
		HrRerIntercept: 0.55,
		HrEeSlope:      0.1,
		HrEeIntercept:  -5,
		O2RerSlope:     1.2,
		O2RerIntercept: 3.8,
	}
}

func TestValidHeartRate(t *testing.T) {
	assert.False(t, ValidHeartRate(0))
	assert.False(t, ValidHeartRate(-10))
	assert.False(t, ValidHeartRate(300))
	assert.False(t, ValidHeartRate(500))
	assert.True(t, ValidHeartRate(1))
	assert.True(t, ValidHeartRate(120))
	assert.True(t, ValidHeartRate(299))
}

func TestModel2WorkedExample(t *testing.T) {
	p := &domain.UserCalProfile{HrEeSlope: 0.1, HrEeIntercept: -5}

	// HR=120 gives kcalPerMin = max(0.9, 120*0.1-5) = 7, over 10 units of
	// duration: 7/60*10.
	got, err := CaloriesForMethod(Model2, p, 120, 10)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/60*10, got, 1e-9)
}

func TestModelFloorsKeepOutputNonNegative(t *testing.T) {
	p := testProfile()
	// Coefficients that would drive the raw rate negative at low HR.
	p.HrVo2Slope = -50
	p.HrVo2Intercept = 10
	p.HrEeSlope = -1
	p.HrEeIntercept = 0

	for _, hr := range []float64{1, 40, 60, 100, 180, 299} {
		for _, m := range []CalorieMethod{Model1, Model2, Model3} {
			got, err := CaloriesForMethod(m, p, hr, 30)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 0.0, "method %s at HR %v", m, hr)
		}
	}
}

func TestModel1AndModel3ShareVo2RerPrediction(t *testing.T) {
	p := testProfile()
	// When the O2-RER cross term equals MODEL1's Weir constants the two
	// models must agree exactly, since they share the VO2/RER sub-formula.
	p.O2RerIntercept = 3.941
	p.O2RerSlope = 1.106

	for _, hr := range []float64{70, 120, 165, 210} {
		m1 := CaloriesByModel1(p, hr, 600)
		m3 := CaloriesByModel3(p, hr, 600)
		assert.InDelta(t, m1, m3, 1e-9, "HR %v", hr)
	}
}

func TestFallbackMonotonicAboveSixty(t *testing.T) {
	prev := FallbackCalories(61, 10)
	for hr := 62.0; hr < 300; hr += 7 {
		got := FallbackCalories(hr, 10)
		assert.GreaterOrEqual(t, got, prev, "HR %v", hr)
		prev = got
	}
}

func TestFallbackFloorAtLowHeartRate(t *testing.T) {
	// Below 70 bpm the raw rate drops under 1 kcal/min and is floored.
	assert.InDelta(t, 10.0, FallbackCalories(40, 10), 1e-9)
	assert.InDelta(t, 10.0, FallbackCalories(70, 10), 1e-9)
	assert.InDelta(t, 40.0, FallbackCalories(100, 10), 1e-9)
}

func TestCaloriesForMethodRejectsBadInput(t *testing.T) {
	p := testProfile()

	_, err := CaloriesForMethod(Model2, p, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidHeartRate)

	_, err = CaloriesForMethod(Model2, p, 300, 10)
	assert.ErrorIs(t, err, ErrInvalidHeartRate)

	_, err = CaloriesForMethod(Model4, p, 120, 10)
	assert.ErrorIs(t, err, ErrMethodNotImplemented)

	_, err = CaloriesForMethod("MODEL9", p, 120, 10)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCaloriesForMethodAllowsZeroDuration(t *testing.T) {
	// Duration is deliberately not validated; zero duration means zero kcal.
	got, err := CaloriesForMethod(Model2, testProfile(), 120, 0)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestRecommendedMethodPriority(t *testing.T) {
	m, err := RecommendedMethod([]CalorieMethod{Model3, Model1})
	require.NoError(t, err)
	assert.Equal(t, Model1, m)

	m, err = RecommendedMethod([]CalorieMethod{Model3, Model2})
	require.NoError(t, err)
	assert.Equal(t, Model2, m)

	m, err = RecommendedMethod([]CalorieMethod{Model4})
	require.NoError(t, err)
	assert.Equal(t, Model4, m)

	_, err = RecommendedMethod(nil)
	assert.ErrorIs(t, err, ErrNoPersonalizedMethod)
}

func TestAvailableMethodsDropsUnknownNames(t *testing.T) {
	p := &domain.UserCalProfile{AvailableMethods: []string{"MODEL2", "bogus", "MODEL1"}}
	assert.Equal(t, []CalorieMethod{Model2, Model1}, AvailableMethods(p))
	assert.Nil(t, AvailableMethods(nil))
}
