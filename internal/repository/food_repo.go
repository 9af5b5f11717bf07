package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type FoodRepository struct {
	db *sql.DB
}

func NewFoodRepository(db *sql.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

const foodColumns = `id, user_id, brand_name, food_name, serving, serving_size, calories,
	total_fat, carbohydrates, dietary_fiber, sugars, protein, sodium, created_at, updated_at`

func scanFood(row interface{ Scan(...interface{}) error }) (*domain.Food, error) {
	var f domain.Food
	err := row.Scan(
		&f.ID, &f.UserID, &f.BrandName, &f.FoodName, &f.Serving, &f.ServingSize, &f.Calories,
		&f.TotalFat, &f.Carbohydrates, &f.DietaryFiber, &f.Sugars, &f.Protein, &f.Sodium,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FoodRepository) Create(f *domain.Food) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO foods
			(id, user_id, brand_name, food_name, serving, serving_size, calories,
			 total_fat, carbohydrates, dietary_fiber, sugars, protein, sodium)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.BrandName, f.FoodName, f.Serving, f.ServingSize, f.Calories,
		f.TotalFat, f.Carbohydrates, f.DietaryFiber, f.Sugars, f.Protein, f.Sodium,
	)
	if err != nil {
		return fmt.Errorf("failed to create food: %w", err)
	}
	return nil
}

func (r *FoodRepository) GetByID(id string) (*domain.Food, error) {
	f, err := scanFood(r.db.QueryRow(
		`SELECT `+foodColumns+` FROM foods WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return f, nil
}

// Search matches against food and brand names; the catalog is shared, so
// results include both global foods and the user's custom entries.
func (r *FoodRepository) Search(userID, query string, limit int) ([]domain.Food, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.Query(
		`SELECT `+foodColumns+` FROM foods
		 WHERE (user_id IS NULL OR user_id = ?) AND (food_name LIKE ? OR brand_name LIKE ?)
		 ORDER BY food_name ASC LIMIT ?`,
		userID, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

// Recent returns the foods the user logged most recently, deduplicated.
func (r *FoodRepository) Recent(userID string, limit int) ([]domain.Food, error) {
	rows, err := r.db.Query(
		`SELECT f.id, f.user_id, f.brand_name, f.food_name, f.serving, f.serving_size, f.calories,
			f.total_fat, f.carbohydrates, f.dietary_fiber, f.sugars, f.protein, f.sodium,
			f.created_at, f.updated_at
		 FROM foods f
		 JOIN (SELECT food_id, MAX(date) AS last_logged FROM food_logs WHERE user_id = ? GROUP BY food_id) fl
			ON fl.food_id = f.id
		 ORDER BY fl.last_logged DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent foods: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

func collectFoods(rows *sql.Rows) ([]domain.Food, error) {
	var foods []domain.Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}
