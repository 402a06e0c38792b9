package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sajitha00/farm-to-keells-api/internal/api/handlers"
	"github.com/sajitha00/farm-to-keells-api/internal/config"
	"github.com/sajitha00/farm-to-keells-api/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes wires the API surface onto the router.
func SetupRoutes(router *gin.Engine, cfg *config.Config, db *database.PostgresDB, redis *database.RedisClient, forecastHandler *handlers.ForecastHandler, paymentHandler *handlers.PaymentHandler) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	api := router.Group("/api")
	{
		api.GET("/predictions", forecastHandler.GetPredictions)
		api.POST("/send-payment", paymentHandler.SendPayment)
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		// Check database health
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Redis is optional; report but do not degrade when disabled
		if redis != nil {
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Redis = "error"
				response.Status = "degraded"
			}
		} else {
			response.Services.Redis = "disabled"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
