// Package nutrition computes calorie values for meals and users.
package nutrition

import (
	"math"

	"github.com/caltrack/caltrack-go/internal/model"
)

// UnknownProductName is shown for items whose product is missing from the catalog.
const UnknownProductName = "unknown product"

// Catalog indexes products by ID.
type Catalog map[string]model.Product

func NewCatalog(products []model.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// UnitCalories returns the kcal per 100 g used for item and whether a value was found.
// A custom item carries its own value; otherwise the catalog product is used.
func (c Catalog) UnitCalories(item model.MealItem) (float64, bool) {
	if item.IsCustomProduct {
		return item.CustomProductCalories, true
	}
	p, ok := c[item.ProductID]
	if !ok {
		return 0, false
	}
	return p.CaloriesPer100g, true
}

// ItemCalories returns the unrounded contribution of one item.
// A dangling product reference contributes 0.
func (c Catalog) ItemCalories(item model.MealItem) float64 {
	unit, _ := c.UnitCalories(item)
	return unit * item.Grams / 100
}

// MealCalories sums the items and rounds to the nearest kcal.
func (c Catalog) MealCalories(items []model.MealItem) int {
	var total float64
	for _, item := range items {
		total += c.ItemCalories(item)
	}
	return int(math.Round(total))
}

// Recompute returns meal with TotalCalories derived from its items.
func (c Catalog) Recompute(meal model.Meal) model.Meal {
	meal.TotalCalories = c.MealCalories(meal.Items)
	return meal
}

// Details joins the items of meal with their products.
func (c Catalog) Details(meal model.Meal) []model.MealItemDetail {
	details := make([]model.MealItemDetail, 0, len(meal.Items))
	for _, item := range meal.Items {
		unit, found := c.UnitCalories(item)

		name := item.ProductName
		switch {
		case item.IsCustomProduct:
		case found:
			name = c[item.ProductID].Name
		default:
			name = UnknownProductName
		}
		if name == "" {
			name = UnknownProductName
		}

		details = append(details, model.MealItemDetail{
			ProductID:       item.ProductID,
			ProductName:     name,
			Grams:           item.Grams,
			CaloriesPer100g: unit,
			Calories:        c.ItemCalories(item),
		})
	}
	return details
}
