// Package main is the entry point for the rental calendar hub server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/api"
	"github.com/rental-calendar-hub/backend/internal/calendar"
	"github.com/rental-calendar-hub/backend/internal/config"
	"github.com/rental-calendar-hub/backend/internal/conflict"
	"github.com/rental-calendar-hub/backend/internal/logging"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting rental calendar hub",
		zap.String("version", version),
		zap.String("listen", cfg.Listen),
	)

	db, err := storage.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := storage.RunMigrations(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	propertyRepo := storage.NewPropertyRepository(db)
	connectionRepo := storage.NewConnectionRepository(db)
	reservationRepo := storage.NewReservationRepository(db)
	blockRepo := storage.NewBlockRepository(db)
	syncLogRepo := storage.NewSyncLogRepository(db)

	fetcher := calendar.NewFetcher(cfg.FetchTimeout())
	reconciler := calendar.NewReconciler(
		connectionRepo, propertyRepo, reservationRepo, syncLogRepo,
		fetcher, logger,
	)
	scheduler := calendar.NewScheduler(
		reconciler, connectionRepo, hub, logger,
		cfg.SyncInterval(), cfg.InitialSyncDelay(),
	)
	conflictService := conflict.NewService(reservationRepo, blockRepo)

	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start sync scheduler", zap.Error(err))
	}

	router := api.NewRouter(api.Deps{
		DB:              db,
		PropertyRepo:    propertyRepo,
		ConnectionRepo:  connectionRepo,
		ReservationRepo: reservationRepo,
		BlockRepo:       blockRepo,
		SyncLogRepo:     syncLogRepo,
		Reconciler:      reconciler,
		Scheduler:       scheduler,
		Conflicts:       conflictService,
		Hub:             hub,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Listen))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// An in-flight sync batch finishes on its own; only the timer stops.
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
