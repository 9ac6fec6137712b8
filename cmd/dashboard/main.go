package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	cfg "github.com/goldvault/investor-dashboard/backend/config"
	"github.com/goldvault/investor-dashboard/backend/internal/handlers"
	"github.com/goldvault/investor-dashboard/backend/internal/usecases"
	repository "github.com/goldvault/investor-dashboard/backend/internal/usecases/repository"
	"github.com/goldvault/investor-dashboard/backend/internal/workers"
	"github.com/goldvault/investor-dashboard/backend/pkg/database"
)

// Server timeout constants.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 15
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

func main() {
	time.Local = time.UTC

	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	logger.Info("Starting application",
		"environment", config.App.Environment,
		"debug", config.App.Debug,
		"server_port", config.HTTP.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Locate migrations next to the binary or one level up
	migrationsPath := "./migrations"
	if workDir, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(workDir, "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "migrations")
		} else if _, err := os.Stat(filepath.Join(workDir, "..", "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "..", "migrations")
		}
	}

	pg, err := database.New(config,
		database.MaxPoolSize(config.DB.PoolMax),
		database.ConnTimeout(config.DB.ConnectTimeout),
		database.HealthCheckPeriod(config.DB.HealthCheckPeriod),
		database.Isolation(pgx.ReadCommitted),
	)
	if err != nil {
		logger.Error("postgres connection failed", slog.String("error", err.Error()))
		return
	}
	defer pg.Close()

	logger.Info("Running database migrations", "path", migrationsPath)
	if err = database.RunMigrations(logger, config.DB.DatabaseURL, migrationsPath); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		log.Fatal(err)
	}

	// Repositories
	ordersRepository := repository.NewOrdersRepository(logger, pg)
	holdingsRepository := repository.NewHoldingsRepository(logger, pg)

	// Services
	gramsPerToken, err := decimal.NewFromString(config.Orders.GramsPerToken)
	if err != nil {
		logger.Error("Invalid grams_per_token value", "error", err, "value", config.Orders.GramsPerToken)
		log.Fatal(err)
	}

	executionEngine := usecases.NewExecutionEngine(gramsPerToken, config.Orders.RejectOnZeroPrice)
	holdingsService := usecases.NewHoldingsService(logger, holdingsRepository)
	priceService := usecases.NewPriceService(logger, holdingsRepository)
	orderService := usecases.NewOrderService(logger, ordersRepository, holdingsService, executionEngine)

	// Workers
	initAndRunWorkers(ctx, logger, config, orderService, priceService)

	// Handlers
	authMiddleware := handlers.NewAuthMiddleware(logger, config.Auth.JWTSecret)
	httpHandler := handlers.NewHTTPHandler(logger, orderService, holdingsService, priceService,
		config.App.Environment == "prod")

	router := mux.NewRouter()
	httpHandler.RegisterRoutes(router, authMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", server.Addr)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited properly")
}

func initAndRunWorkers(
	ctx context.Context,
	logger *slog.Logger,
	config *cfg.Config,
	orderService *usecases.OrderService,
	priceService *usecases.PriceService,
) {
	orderExpirer := workers.NewOrderExpirer(
		logger,
		orderService,
		time.Duration(config.Workers.ExpiryInterval)*time.Minute,
	)

	go func() {
		logger.Info("Starting order expirer worker")
		orderExpirer.Start(ctx)
	}()

	if config.Workers.MatcherEnabled {
		orderMatcher := workers.NewOrderMatcher(
			logger,
			orderService,
			priceService,
			time.Duration(config.Workers.MatcherInterval)*time.Minute,
		)

		go func() {
			logger.Info("Starting order matcher worker")
			orderMatcher.Start(ctx)
		}()
	}

	logger.Info("All workers initialized and started")
}
