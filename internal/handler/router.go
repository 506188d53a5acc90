package handler

import (
	"net/http"
	"time"

	"github.com/caltrack/caltrack-go/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators of the REST store router.
type Deps struct {
	JWTSecret string
	TokenTTL  time.Duration
	Auth      AuthService
	Users     UserService
	Meals     MealService
	Products  ProductService
	Accounts  middleware.AccountLookup
	Metrics   *middleware.Metrics

	// AuthRateLimit wraps the public auth routes. Nil disables limiting.
	AuthRateLimit func(http.Handler) http.Handler
}

// NewRouter wires the REST store routes.
func NewRouter(d Deps) http.Handler {
	authH := NewAuthHandler(d.Auth)
	userH := NewUserHandler(d.Auth, d.Users)
	mealH := NewMealHandler(d.Meals)
	productH := NewProductHandler(d.Products)

	jwt := middleware.JWTAuth(d.JWTSecret, d.TokenTTL)
	account := middleware.LoadAccount(d.Accounts)
	authenticated := func(next http.Handler) http.Handler { return jwt(account(next)) }
	limit := d.AuthRateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/users", authH.HandleRegister)
		adminOnly := func(next http.Handler) http.Handler { return authenticated(middleware.RequireAdmin(next)) }
		r.With(middleware.SkipWhen(HasEmailQuery, adminOnly)).Get("/users", userH.HandleList)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/auth/refresh", authH.HandleRefresh)
		r.Get("/users/{id}", userH.HandleGet)
		r.Put("/users/{id}", userH.HandleUpdate)

		r.Get("/meals", mealH.HandleList)
		r.Get("/meals/{id}", mealH.HandleGet)
		r.Get("/products", productH.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActive)
			r.Post("/meals", mealH.HandleCreate)
			r.Put("/meals/{id}", mealH.HandleUpdate)
			r.Delete("/meals/{id}", mealH.HandleDelete)
			r.Post("/products", productH.HandleCreate)
		})
	})

	return r
}
