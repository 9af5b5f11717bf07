package domain

import "time"

// StreakData is derived from the full workout and food-log history; the
// users row caches the counters but recomputation is always authoritative.
type StreakData struct {
	CurrentWorkoutStreak int        `json:"currentWorkoutStreak"`
	LongestWorkoutStreak int        `json:"longestWorkoutStreak"`
	CurrentFoodStreak    int        `json:"currentFoodStreak"`
	LongestFoodStreak    int        `json:"longestFoodStreak"`
	LastWorkoutDate      *time.Time `json:"lastWorkoutDate"`
	LastFoodLogDate      *time.Time `json:"lastFoodLogDate"`
	LastActiveAt         *time.Time `json:"lastActiveAt"`
}
