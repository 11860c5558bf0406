package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/database"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/handlers"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/ingest"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/middleware"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/repositories"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	db, err := database.Initialize(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	transactionRepo := repositories.NewTransactionRepository(db)

	featureService := services.NewFeatureService()
	ltvService := services.NewLifetimeValueService(cfg.Analytics)
	segmentationService := services.NewSegmentationService(featureService, ltvService, cfg.Analytics)
	cohortService := services.NewCohortService(featureService)
	churnService := services.NewChurnService(featureService, cfg.Analytics)
	benchmarkService := services.NewBenchmarkService(featureService, ltvService)
	generator := services.NewTransactionGenerator()
	metrics := services.NewPrometheusMetrics()

	analyticsHandler := handlers.NewAnalyticsHandler(
		transactionRepo,
		segmentationService,
		cohortService,
		churnService,
		benchmarkService,
		metrics,
	)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, ingest.NewCSVAdapter(), metrics)
	devHandler := handlers.NewDevHandler(transactionRepo, generator, metrics)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/transactions/import", transactionHandler.ImportTransactions)
	api.GET("/transactions/count", transactionHandler.CountTransactions)
	api.GET("/transactions/recent", transactionHandler.ListRecentTransactions)
	api.POST("/analyses/rfm", analyticsHandler.SegmentCustomers)
	api.POST("/analyses/cohorts", analyticsHandler.CohortRetention)
	api.POST("/analyses/churn", analyticsHandler.ChurnRates)
	api.POST("/analyses/benchmark", analyticsHandler.BenchmarkWindows)

	if !cfg.IsProduction() {
		api.POST("/dev/seed", devHandler.SeedTransactions)
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", server.Addr, "environment", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}

	slog.Info("server stopped")
}
