package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sajitha00/farm-to-keells-api/internal/api"
	"github.com/sajitha00/farm-to-keells-api/internal/api/handlers"
	"github.com/sajitha00/farm-to-keells-api/internal/config"
	"github.com/sajitha00/farm-to-keells-api/internal/database"
	"github.com/sajitha00/farm-to-keells-api/internal/dataset"
	"github.com/sajitha00/farm-to-keells-api/internal/forecast"
	"github.com/sajitha00/farm-to-keells-api/internal/logging"
	"github.com/sajitha00/farm-to-keells-api/internal/paypal"
	"github.com/sajitha00/farm-to-keells-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewStandardLogger(cfg.LogLevel, cfg.Environment)
	logrus.SetLevel(logging.ParseLogrusLevel(cfg.LogLevel))

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis. The forecast cache is optional, so a failed
	// connection degrades to uncached responses instead of aborting.
	var redis *database.RedisClient
	if cfg.Redis.Enabled {
		redis, err = database.NewRedisConnection(cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, forecast cache disabled")
			redis = nil
		} else {
			defer redis.Close()
		}
	}

	// Train the demand model from the historical dataset.
	generator, err := buildForecaster(&cfg.Forecast)
	if err != nil {
		log.Fatalf("Failed to build demand forecaster: %v", err)
	}

	// Payment collaborators
	gateway := paypal.NewClient(&cfg.PayPal)
	farmers := database.NewFarmerRepository(db.Pool)
	notifications := database.NewNotificationRepository(db.Pool)
	paymentService := services.NewPaymentService(farmers, gateway, notifications, cfg.Payment, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	forecastHandler := handlers.NewForecastHandler(generator, redis, logger.Logger())
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	api.SetupRoutes(router, cfg, db, redis, forecastHandler, paymentHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.LogStartup("farm-to-keells-api", "1.0.0", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.LogShutdown("farm-to-keells-api", "signal received")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Logger().Info("Server exited")
}

// buildForecaster loads the historical demand dataset, fits the linear
// model, and prepares the target-year grid generator.
func buildForecaster(cfg *config.ForecastConfig) (*forecast.Generator, error) {
	records, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	locations := make([]string, len(records))
	products := make([]string, len(records))
	for i, rec := range records {
		locations[i] = rec.Location
		products[i] = rec.Product
	}
	locEnc := forecast.BuildEncoding(locations)
	prodEnc := forecast.BuildEncoding(products)

	model, err := forecast.Fit(records, locEnc, prodEnc)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	return forecast.NewGenerator(model, locEnc, prodEnc, cfg.TargetYear), nil
}
