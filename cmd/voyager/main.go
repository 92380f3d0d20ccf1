package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/voyager/internal/api"
	"github.com/MikeSquared-Agency/voyager/internal/config"
	"github.com/MikeSquared-Agency/voyager/internal/gemini"
	"github.com/MikeSquared-Agency/voyager/internal/hermes"
	"github.com/MikeSquared-Agency/voyager/internal/planner"
	"github.com/MikeSquared-Agency/voyager/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("voyager starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, relying on the endpoint to authorise requests")
	}
	llm := gemini.NewClient(gemini.Config{
		Endpoint: cfg.GeminiEndpoint,
		AppID:    cfg.AppID,
		APIKey:   cfg.GeminiAPIKey,
	}, slog.Default())

	// NATS/Hermes (optional, plan notifications only)
	var publisher planner.Publisher
	if cfg.EventsEnabled() {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, plan notifications disabled")
	}

	plans := planner.New(llm, publisher, slog.Default())

	// Accounts (optional, plan routes are open without them)
	var accounts api.Accounts
	if cfg.AccountsEnabled() {
		db, err := store.New(ctx, cfg.DatabaseURL, cfg.EmailDomain)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		accounts = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, running without accounts")
	}

	srv := api.NewServer(cfg.Port, plans, accounts, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("voyager ready", "port", cfg.Port, "accounts", cfg.AccountsEnabled(), "events", cfg.EventsEnabled())

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	cancel()
	slog.Info("voyager stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
