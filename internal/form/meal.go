package form

import (
	"fmt"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/nutrition"
)

const (
	MinItemGrams = 1
	MaxItemGrams = 2000
)

var mealRules = []Rule[model.MealRequest]{
	{Field: "name", Message: "name is required", Valid: func(m model.MealRequest) bool { return required(m.Name) }},
	{Field: "name", Message: "name must be 3 to 50 characters", Valid: func(m model.MealRequest) bool { return lengthBetween(m.Name, 3, 50) }},
	{Field: "date", Message: "date is required", Valid: func(m model.MealRequest) bool { return required(m.Date) }},
	{Field: "date", Message: "date is invalid", Valid: func(m model.MealRequest) bool {
		_, err := nutrition.ParseDate(m.Date)
		return err == nil
	}},
	{Field: "items", Message: "add at least one product", Valid: func(m model.MealRequest) bool { return len(m.Items) > 0 }},
	{Field: "items", Message: "total grams must be greater than 0", Valid: func(m model.MealRequest) bool {
		var total float64
		for _, it := range m.Items {
			total += it.Grams
		}
		return total > 0
	}},
}

func itemRules(i int) []Rule[model.MealRequest] {
	prefix := fmt.Sprintf("items[%d].", i)
	return []Rule[model.MealRequest]{
		{Field: prefix + "productId", Message: "product is required", Valid: func(m model.MealRequest) bool {
			return m.Items[i].IsCustomProduct || required(m.Items[i].ProductID)
		}},
		{Field: prefix + "grams", Message: fmt.Sprintf("grams must be between %d and %d", MinItemGrams, MaxItemGrams), Valid: func(m model.MealRequest) bool {
			g := m.Items[i].Grams
			return g >= MinItemGrams && g <= MaxItemGrams
		}},
		{Field: prefix + "customProductCalories", Message: "calories must not be negative", Valid: func(m model.MealRequest) bool {
			return !m.Items[i].IsCustomProduct || m.Items[i].CustomProductCalories >= 0
		}},
	}
}

// ValidateMeal checks a meal create or update request.
func ValidateMeal(m model.MealRequest) error {
	rules := append([]Rule[model.MealRequest]{}, mealRules...)
	for i := range m.Items {
		rules = append(rules, itemRules(i)...)
	}
	return Validate(m, rules)
}

var productRules = []Rule[model.ProductRequest]{
	{Field: "name", Message: "name is required", Valid: func(p model.ProductRequest) bool { return required(p.Name) }},
	{Field: "name", Message: "name must be at most 100 characters", Valid: func(p model.ProductRequest) bool { return lengthBetween(p.Name, 1, 100) }},
	{Field: "caloriesPer100g", Message: "calories must not be negative", Valid: func(p model.ProductRequest) bool { return p.CaloriesPer100g >= 0 }},
}

func ValidateProduct(p model.ProductRequest) error {
	return Validate(p, productRules)
}
