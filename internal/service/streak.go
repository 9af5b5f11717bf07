package service

import (
	"sort"
	"time"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

// ComputeStreaks derives workout and food-logging streaks from the user's
// full activity history. It is a pure function of its inputs: recomputing on
// the same history always yields the same result, so callers recompute from
// scratch instead of mutating cached counters incrementally.
func ComputeStreaks(workoutTimes, foodLogTimes []time.Time, now time.Time) domain.StreakData {
	var data domain.StreakData
	data.CurrentWorkoutStreak, data.LongestWorkoutStreak, data.LastWorkoutDate = activityStreak(workoutTimes, now)
	data.CurrentFoodStreak, data.LongestFoodStreak, data.LastFoodLogDate = activityStreak(foodLogTimes, now)
	data.LastActiveAt = laterOf(data.LastWorkoutDate, data.LastFoodLogDate)
	return data
}

// activityStreak walks the distinct UTC calendar days of one activity stream.
// A run continues only when consecutive days are exactly one day apart; the
// trailing run counts as the current streak only while it still includes
// today or yesterday.
func activityStreak(times []time.Time, now time.Time) (current, longest int, last *time.Time) {
	if len(times) == 0 {
		return 0, 0, nil
	}

	seen := make(map[time.Time]struct{}, len(times))
	var latest time.Time
	for _, t := range times {
		u := t.UTC()
		seen[utcDay(u)] = struct{}{}
		if u.After(latest) {
			latest = u
		}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := utcDay(now.UTC())
	gap := today.Sub(days[len(days)-1])
	if gap == 0 || gap == 24*time.Hour {
		current = run
	}

	return current, longest, &latest
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
