package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sajitha00/farm-to-keells-api/internal/database"
	"github.com/sajitha00/farm-to-keells-api/internal/forecast"
)

const forecastCacheTTL = 5 * time.Minute

// ForecastHandler serves the precomputed-model forecast grid.
type ForecastHandler struct {
	generator *forecast.Generator
	redis     *database.RedisClient
	logger    *slog.Logger
}

// NewForecastHandler creates a forecast handler. redis may be nil; the
// handler then generates on every request.
func NewForecastHandler(generator *forecast.Generator, redis *database.RedisClient, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		generator: generator,
		redis:     redis,
		logger:    logger,
	}
}

// GetPredictions handles GET /api/predictions. The grid is a pure
// function of startup state, so the serialized response is cached.
func (h *ForecastHandler) GetPredictions(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("forecast:grid:%d", h.generator.TargetYear())

	if h.redis != nil {
		cached, err := h.redis.Get(ctx, cacheKey)
		if err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	entries, err := h.generator.Generate()
	if err != nil {
		h.logger.Error("Failed to generate forecast grid", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate predictions."})
		return
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		h.logger.Error("Failed to marshal forecast grid", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate predictions."})
		return
	}

	if h.redis != nil {
		if err := h.redis.Set(ctx, cacheKey, string(payload), forecastCacheTTL); err != nil {
			h.logger.Warn("Failed to cache forecast grid", "error", err)
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
