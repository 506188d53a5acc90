package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caltrack/caltrack-go/internal/config"
	"github.com/caltrack/caltrack-go/internal/handler"
	"github.com/caltrack/caltrack-go/internal/middleware"
	"github.com/caltrack/caltrack-go/internal/repository"
	"github.com/caltrack/caltrack-go/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = repository.RunMigrations(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	mealRepo := repository.NewMealRepository(db)
	productRepo := repository.NewProductRepository(db)

	userService := service.NewUserService(userRepo)

	stop := make(chan struct{})
	defer close(stop)

	router := handler.NewRouter(handler.Deps{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		Auth:          service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL),
		Users:         userService,
		Meals:         service.NewMealService(mealRepo, productRepo),
		Products:      service.NewProductService(productRepo),
		Accounts:      userService,
		Metrics:       middleware.NewMetrics(),
		AuthRateLimit: middleware.RateLimit(5, 10, stop),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
