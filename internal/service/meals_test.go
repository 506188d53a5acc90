package service

import (
	"context"
	"errors"
	"testing"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
)

func newTestMealService(seed ...model.Meal) (*MealService, *memMeals) {
	meals := newMemMeals(seed...)
	products := &memProducts{products: []model.Product{
		{ID: "p1", Name: "Yoghurt", CaloriesPer100g: 50},
		{ID: "p2", Name: "Cake", CaloriesPer100g: 400, UserID: "u-1"},
		{ID: "p3", Name: "Secret stew", CaloriesPer100g: 120, UserID: "u-2"},
	}}
	return NewMealService(meals, products), meals
}

func TestMealCreateRecomputesTotal(t *testing.T) {
	svc, store := newTestMealService()

	meal, err := svc.Create(context.Background(), anna, model.MealRequest{
		Name: "Lunch",
		Date: "2024-01-01",
		Items: []model.MealItem{
			{ProductID: "p1", Grams: 200},
			{ProductID: "p2", Grams: 50},
			{ProductID: "p3", Grams: 100},
		},
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if meal.TotalCalories != 300 {
		t.Errorf("TotalCalories = %d, want 300", meal.TotalCalories)
	}
	if meal.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", meal.UserID, "u-1")
	}
	if meal.Items[0].ProductName != "Yoghurt" {
		t.Errorf("Items[0].ProductName = %q, want %q", meal.Items[0].ProductName, "Yoghurt")
	}
	if _, ok := store.meals[meal.ID]; !ok {
		t.Error("meal was not stored")
	}
}

func TestMealCreateValidation(t *testing.T) {
	svc, _ := newTestMealService()

	_, err := svc.Create(context.Background(), anna, model.MealRequest{Name: "Lunch", Date: "2024-01-01",
		Items: []model.MealItem{{ProductID: "p1", Grams: 2500}}})

	if !errors.Is(err, form.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestMealAccess(t *testing.T) {
	svc, _ := newTestMealService(
		model.Meal{ID: "m-1", UserID: "u-1", Name: "Lunch", Date: "2024-01-01"},
		model.Meal{ID: "m-2", UserID: "u-2", Name: "Dinner", Date: "2024-01-01"},
	)
	ctx := context.Background()

	if _, err := svc.Get(ctx, anna, "m-1"); err != nil {
		t.Errorf("Get() own meal unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, anna, "m-2"); err != ErrForbidden {
		t.Errorf("Get() foreign meal error = %v, want %v", err, ErrForbidden)
	}
	if _, err := svc.Get(ctx, admin, "m-2"); err != nil {
		t.Errorf("Get() as admin unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, anna, "m-9"); err != ErrMealNotFound {
		t.Errorf("Get() missing error = %v, want %v", err, ErrMealNotFound)
	}
	if err := svc.Delete(ctx, anna, "m-2"); err != ErrForbidden {
		t.Errorf("Delete() foreign meal error = %v, want %v", err, ErrForbidden)
	}
	if err := svc.Delete(ctx, anna, "m-1"); err != nil {
		t.Errorf("Delete() own meal unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, anna, "m-1"); err != ErrMealNotFound {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrMealNotFound)
	}
}

func TestMealList(t *testing.T) {
	svc, _ := newTestMealService(
		model.Meal{ID: "m-1", UserID: "u-1"},
		model.Meal{ID: "m-2", UserID: "u-2"},
		model.Meal{ID: "m-3", UserID: "u-1"},
	)
	ctx := context.Background()

	own, err := svc.List(ctx, anna, "")
	if err != nil || len(own) != 2 {
		t.Errorf("List() own = %d meals, %v; want 2", len(own), err)
	}
	if _, err := svc.List(ctx, anna, "u-2"); err != ErrForbidden {
		t.Errorf("List() foreign error = %v, want %v", err, ErrForbidden)
	}
	other, err := svc.List(ctx, admin, "u-2")
	if err != nil || len(other) != 1 {
		t.Errorf("List() as admin = %d meals, %v; want 1", len(other), err)
	}
}

func TestMealUpdateUsesOwnerCatalog(t *testing.T) {
	svc, _ := newTestMealService(model.Meal{ID: "m-1", UserID: "u-1", Name: "Lunch", Date: "2024-01-01", TotalCalories: 1})

	meal, err := svc.Update(context.Background(), admin, "m-1", model.MealRequest{
		Name:  "Late lunch",
		Date:  "2024-01-01T15:00",
		Items: []model.MealItem{{ProductID: "p2", Grams: 100}},
	})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if meal.TotalCalories != 400 {
		t.Errorf("TotalCalories = %d, want 400 from the owner's custom product", meal.TotalCalories)
	}
	if meal.UserID != "u-1" {
		t.Errorf("UserID = %q, want owner preserved", meal.UserID)
	}
}
