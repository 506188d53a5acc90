package service

import (
	"context"
	"errors"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/nutrition"
	"github.com/caltrack/caltrack-go/internal/repository"
)

var ErrMealNotFound = errors.New("meal not found")

type MealStore interface {
	Create(ctx context.Context, meal *model.Meal) error
	GetByID(ctx context.Context, id string) (*model.Meal, error)
	List(ctx context.Context, userID string) ([]model.Meal, error)
	Update(ctx context.Context, meal *model.Meal) error
	Delete(ctx context.Context, id string) error
}

// MealService handles meal business logic. Totals are always recomputed from
// the items and the owner's visible catalog before a meal is stored.
type MealService struct {
	meals    MealStore
	products ProductStore
}

func NewMealService(meals MealStore, products ProductStore) *MealService {
	return &MealService{meals: meals, products: products}
}

// List returns the meals of userID. Only admins may list someone else's meals;
// an empty userID means the actor's own.
func (s *MealService) List(ctx context.Context, actor Actor, userID string) ([]model.Meal, error) {
	if userID == "" {
		userID = actor.ID
	}
	if !actor.canAccess(userID) {
		return nil, ErrForbidden
	}
	return s.meals.List(ctx, userID)
}

func (s *MealService) Get(ctx context.Context, actor Actor, id string) (model.Meal, error) {
	meal, err := s.load(ctx, actor, id)
	if err != nil {
		return model.Meal{}, err
	}
	return *meal, nil
}

func (s *MealService) Create(ctx context.Context, actor Actor, req model.MealRequest) (model.Meal, error) {
	if err := form.ValidateMeal(req); err != nil {
		return model.Meal{}, err
	}

	meal, err := s.priced(ctx, actor.ID, model.Meal{UserID: actor.ID, Name: req.Name, Date: req.Date, Items: req.Items})
	if err != nil {
		return model.Meal{}, err
	}

	if err := s.meals.Create(ctx, &meal); err != nil {
		return model.Meal{}, err
	}
	return meal, nil
}

func (s *MealService) Update(ctx context.Context, actor Actor, id string, req model.MealRequest) (model.Meal, error) {
	existing, err := s.load(ctx, actor, id)
	if err != nil {
		return model.Meal{}, err
	}
	if err := form.ValidateMeal(req); err != nil {
		return model.Meal{}, err
	}

	existing.Name = req.Name
	existing.Date = req.Date
	existing.Items = req.Items

	meal, err := s.priced(ctx, existing.UserID, *existing)
	if err != nil {
		return model.Meal{}, err
	}
	if err := s.meals.Update(ctx, &meal); err != nil {
		return model.Meal{}, err
	}
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.meals.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMealNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	return nil
}

func (s *MealService) load(ctx context.Context, actor Actor, id string) (*model.Meal, error) {
	meal, err := s.meals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMealNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	if !actor.canAccess(meal.UserID) {
		return nil, ErrForbidden
	}
	return meal, nil
}

// priced fills product names and the total from the catalog visible to ownerID.
func (s *MealService) priced(ctx context.Context, ownerID string, meal model.Meal) (model.Meal, error) {
	products, err := s.products.ListVisible(ctx, ownerID)
	if err != nil {
		return model.Meal{}, err
	}
	catalog := nutrition.NewCatalog(products)

	items := make([]model.MealItem, len(meal.Items))
	for i, item := range meal.Items {
		if p, ok := catalog[item.ProductID]; ok && !item.IsCustomProduct {
			item.ProductName = p.Name
		}
		items[i] = item
	}
	meal.Items = items

	return catalog.Recompute(meal), nil
}
