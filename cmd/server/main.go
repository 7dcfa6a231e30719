package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/collab-blog-api/internal/api"
	"github.com/collab-blog-api/internal/auth"
	"github.com/collab-blog-api/internal/config"
	"github.com/collab-blog-api/internal/database"
	"github.com/collab-blog-api/internal/notify"
	"github.com/collab-blog-api/internal/realtime"
	"github.com/collab-blog-api/internal/repository"
	"github.com/collab-blog-api/internal/service"
	"github.com/collab-blog-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting collaborative blog API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Token verifier, shared by HTTP middleware and the socket handshake
	verifier := auth.NewVerifier(&cfg.Auth)

	// Live connection registry and room index, owned here for the process
	// lifetime
	hub := realtime.NewHub(log)

	// Notification dispatcher: live delivery through the hub, durable
	// delivery through Web Push
	dispatcher := notify.NewDispatcher(repos.Subscription, notify.NewWebPushSender(&cfg.Push), hub, log)

	// Initialize services
	services := service.NewServices(repos, verifier, dispatcher, hub, log)

	// Websocket server for real-time comments and notifications
	ws := realtime.NewServer(hub, verifier, services.Comment, cfg.Server.FrontendURL, log)

	// Initialize router
	router := api.NewRouter(services, ws, verifier, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
