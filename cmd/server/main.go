package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	billingmodels "companion-chat/backend/billing/models"
	charmodels "companion-chat/backend/character/models"
	charrepo "companion-chat/backend/character/repository"
	convmodels "companion-chat/backend/conversation/models"
	"companion-chat/backend/pkg/config"
	"companion-chat/backend/pkg/di"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/pkg/router"
	"companion-chat/backend/shared/observability"
	usermodels "companion-chat/backend/user/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.Get()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"))

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(
		&usermodels.User{},
		&charmodels.Character{},
		&convmodels.Conversation{},
		&convmodels.Message{},
		&billingmodels.Subscription{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Seed the persona catalog on first boot
	if err := charrepo.Seed(charrepo.NewGormCharacterRepository(db)); err != nil {
		log.LogError(err, "Failed to seed character catalog")
		os.Exit(1)
	}

	// Observability: stdout traces plus a Prometheus scrape endpoint
	shutdownTracing := observability.SetupTracing("companion-chat")
	defer shutdownTracing()
	if metricsAddr := os.Getenv("METRICS_ADDR"); metricsAddr != "" {
		observability.SetupPrometheusMetrics(metricsAddr)
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	defer container.Close()

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
