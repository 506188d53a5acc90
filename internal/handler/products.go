package handler

import (
	"context"
	"net/http"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/service"
)

type ProductService interface {
	List(ctx context.Context, actor service.Actor) ([]model.Product, error)
	Create(ctx context.Context, actor service.Actor, req model.ProductRequest) (model.Product, error)
}

// ProductHandler serves the /products resource.
type ProductHandler struct {
	service ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// HandleList handles GET /products.
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	products, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleCreate handles POST /products.
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req model.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}
