package model

// Product is a catalog entry. UserID is set for custom products authored by a user
// and empty for the shared catalog.
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	UserID          string  `json:"userId,omitempty"`
}

// IsCustom reports whether the product belongs to a single user.
func (p Product) IsCustom() bool {
	return p.UserID != ""
}

// ProductRequest is the body of a product create request. Shared is honoured for
// admins only.
type ProductRequest struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	Shared          bool    `json:"shared,omitempty"`
}
