package domain

import "time"

type Meal string

const (
	MealBreakfast Meal = "BREAKFAST"
	MealLunch     Meal = "LUNCH"
	MealDinner    Meal = "DINNER"
	MealSnack     Meal = "SNACK"
)

func (m Meal) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

type Food struct {
	ID            string    `json:"id"`
	UserID        *string   `json:"userId"`
	BrandName     *string   `json:"brandName"`
	FoodName      string    `json:"foodName"`
	Serving       string    `json:"serving"`
	ServingSize   *string   `json:"servingSize"`
	Calories      float64   `json:"calories"`
	TotalFat      *float64  `json:"totalFat"`
	Carbohydrates *float64  `json:"totalCarbohydrates"`
	DietaryFiber  *float64  `json:"dietaryFiber"`
	Sugars        *float64  `json:"sugars"`
	Protein       *float64  `json:"protein"`
	Sodium        *float64  `json:"sodium"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type FoodLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	FoodID      string    `json:"foodId"`
	Servings    float64   `json:"servings"`
	ServingSize *string   `json:"servingSize"`
	Meal        Meal      `json:"meal"`
	Date        time.Time `json:"date"`
	Food        *Food     `json:"food,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
