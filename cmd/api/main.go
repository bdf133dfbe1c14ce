// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"greenia/internal/config"
	"greenia/internal/db"
	"greenia/internal/db/migrations"
	"greenia/internal/interfaces"
	"greenia/internal/logging"
	"greenia/internal/routes"
	"greenia/internal/services"
)

// @title Greenia API
// @version 1.0
// @description Plastic container recognition, recycling impact reports and account management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		App:    "greenia",
	})
	if cfg.IsProduction() && cfg.JWTSecret == "dev" {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	ctx := context.Background()

	// Create database if it doesn't exist
	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database exists")
	}

	database, err := db.New(ctx, cfg.DatabaseURL, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := migrations.RunMigrations(ctx, database.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	s3Config, err := config.NewS3Config(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load S3 configuration")
	}

	var revocations interfaces.SessionStore
	if cfg.RedisURL != "" {
		store, err := services.NewRedisSessionStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer store.Close()
		revocations = store
	} else {
		log.Warn().Msg("REDIS_URL not set, logout will not revoke issued tokens")
	}

	router := routes.SetupRoutes(database.DB, cfg, s3Config, routes.Externals{
		Sessions: services.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL, revocations),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
