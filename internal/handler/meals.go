package handler

import (
	"context"
	"net/http"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/service"
	"github.com/go-chi/chi/v5"
)

type MealService interface {
	List(ctx context.Context, actor service.Actor, userID string) ([]model.Meal, error)
	Get(ctx context.Context, actor service.Actor, id string) (model.Meal, error)
	Create(ctx context.Context, actor service.Actor, req model.MealRequest) (model.Meal, error)
	Update(ctx context.Context, actor service.Actor, id string, req model.MealRequest) (model.Meal, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// MealHandler serves the /meals resource.
type MealHandler struct {
	service MealService
}

func NewMealHandler(svc MealService) *MealHandler {
	return &MealHandler{service: svc}
}

// HandleList handles GET /meals. Admins may pass ?userId=.
func (h *MealHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	meals, err := h.service.List(r.Context(), actor, r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// HandleGet handles GET /meals/{id}.
func (h *MealHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	meal, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// HandleCreate handles POST /meals.
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req model.MealRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

// HandleUpdate handles PUT /meals/{id}.
func (h *MealHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req model.MealRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meal, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// HandleDelete handles DELETE /meals/{id}.
func (h *MealHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
