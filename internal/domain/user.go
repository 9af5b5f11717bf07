package domain

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	DOB                   *time.Time `json:"dob"`
	Gender                *string    `json:"gender"`
	Role                  UserRole   `json:"role"`
	CalorieCountingMethod *string    `json:"calorieCountingMethod"`
	EmailVerified         bool       `json:"emailVerified"`
	CurrentWorkoutStreak  int        `json:"currentWorkoutStreak"`
	LongestWorkoutStreak  int        `json:"longestWorkoutStreak"`
	CurrentFoodStreak     int        `json:"currentFoodStreak"`
	LongestFoodStreak     int        `json:"longestFoodStreak"`
	LastWorkoutDate       *time.Time `json:"lastWorkoutDate"`
	LastFoodLogDate       *time.Time `json:"lastFoodLogDate"`
	LastActiveAt          time.Time  `json:"lastActiveAt"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}
