package service

import (
	"context"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
)

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	ListVisible(ctx context.Context, userID string) ([]model.Product, error)
}

// ProductService manages the shared catalog and users' custom products.
type ProductService struct {
	repo ProductStore
}

func NewProductService(repo ProductStore) *ProductService {
	return &ProductService{repo: repo}
}

// List returns the shared catalog plus the actor's custom products.
func (s *ProductService) List(ctx context.Context, actor Actor) ([]model.Product, error) {
	return s.repo.ListVisible(ctx, actor.ID)
}

// Create adds a custom product owned by the actor, or a shared one when an admin asks for it.
func (s *ProductService) Create(ctx context.Context, actor Actor, req model.ProductRequest) (model.Product, error) {
	if err := form.ValidateProduct(req); err != nil {
		return model.Product{}, err
	}
	if req.Shared && !actor.IsAdmin() {
		return model.Product{}, ErrForbidden
	}

	p := model.Product{Name: req.Name, CaloriesPer100g: req.CaloriesPer100g}
	if !req.Shared {
		p.UserID = actor.ID
	}

	if err := s.repo.Create(ctx, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}
