package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caltrack/caltrack-go/internal/cli"
	"github.com/caltrack/caltrack-go/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	// A missing .env is normal for the client.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.Open(ctx, config.LoadClient())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	code := cli.Execute(ctx, app, os.Args[1:])
	if err := app.Close(); err != nil {
		slog.Warn("failed to close state", "error", err)
	}
	os.Exit(code)
}
