package model

import "time"

// MealItem is one product portion of a meal. A custom item references a product
// that is not in the catalog and carries its own per-100g calorie value.
type MealItem struct {
	ProductID             string  `json:"productId"`
	ProductName           string  `json:"productName,omitempty"`
	Grams                 float64 `json:"grams"`
	IsCustomProduct       bool    `json:"isCustomProduct,omitempty"`
	CustomProductCalories float64 `json:"customProductCalories,omitempty"`
}

// Meal is a named, dated list of items owned by a user. TotalCalories is a cached
// value; it is recomputed from the items and the catalog whenever either changes.
type Meal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Date          string     `json:"date"`
	Items         []MealItem `json:"items"`
	TotalCalories int        `json:"totalCalories"`
	CreatedAt     time.Time  `json:"createdAt,omitzero"`
	UpdatedAt     time.Time  `json:"updatedAt,omitzero"`
}

// MealRequest is the body of meal create and update requests.
type MealRequest struct {
	Name  string     `json:"name"`
	Date  string     `json:"date"`
	Items []MealItem `json:"items"`
}

// MealItemDetail is a meal item joined with its product.
type MealItemDetail struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Grams           float64 `json:"grams"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	Calories        float64 `json:"calories"`
}
