package handler

import (
	"context"
	"net/http"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserService interface {
	List(ctx context.Context, actor service.Actor) ([]model.User, error)
	Get(ctx context.Context, actor service.Actor, id string) (model.User, error)
	Update(ctx context.Context, actor service.Actor, id string, req model.UpdateUserRequest) (model.User, error)
}

// UserHandler serves the /users resource.
type UserHandler struct {
	auth  AuthService
	users UserService
}

func NewUserHandler(auth AuthService, users UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// HasEmailQuery matches the public lookup GET /users?email=.
func HasEmailQuery(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Query().Has("email")
}

// HandleList handles GET /users. With ?email= it is the public lookup and
// returns at most one account; otherwise it lists every account for admins.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if HasEmailQuery(r) {
		users, err := h.auth.FindByEmail(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
		return
	}

	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet handles GET /users/{id}.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate handles PUT /users/{id}.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
