package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskloft/taskloft-be/internal/api"
	"github.com/taskloft/taskloft-be/internal/auth"
	"github.com/taskloft/taskloft-be/internal/config"
	"github.com/taskloft/taskloft-be/internal/database"
	"github.com/taskloft/taskloft-be/internal/events"
	"github.com/taskloft/taskloft-be/internal/logger"
	"github.com/taskloft/taskloft-be/internal/monitoring"
	"github.com/taskloft/taskloft-be/internal/services"
	"github.com/taskloft/taskloft-be/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	st := store.NewSQLite(db)

	// Select the access-gate strategy
	var strategy auth.TokenStrategy
	switch cfg.TokenMode {
	case config.TokenModeSigned:
		if cfg.TokenSecret == "" {
			log.Fatal().Msg("TOKEN_SECRET is required in signed token mode")
		}
		strategy = auth.NewSignedStrategy(st, []byte(cfg.TokenSecret), cfg.TokenTTL)
	case config.TokenModeIdentity:
		log.Warn().Msg("Identity token mode active: bearer tokens are raw user ids with no cryptographic binding")
		strategy = auth.NewIdentityStrategy(st)
	default:
		log.Fatal().Str("token_mode", cfg.TokenMode).Msg("Unknown token mode")
	}

	// Set up the event feed hub
	hub := events.NewHub(log.With().Str("component", "events").Logger())
	go hub.Run()

	// Set up services
	userService := services.NewUserService(st, log.With().Str("component", "users").Logger())
	taskService := services.NewTaskService(st, hub, log.With().Str("component", "tasks").Logger())

	// Set up and run the background activity digest
	digest, err := monitoring.NewDigest(st, hub, cfg.DigestSchedule, log.With().Str("component", "digest").Logger())
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.DigestSchedule).Msg("Invalid digest schedule")
	}
	go digest.Run()

	// Set up router
	router := api.NewRouter(userService, taskService, hub, strategy, cfg.AllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	digest.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
