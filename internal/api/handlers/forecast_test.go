package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajitha00/farm-to-keells-api/internal/database"
	"github.com/sajitha00/farm-to-keells-api/internal/forecast"
	"github.com/sajitha00/farm-to-keells-api/internal/logging"
	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

func testGenerator(t *testing.T) *forecast.Generator {
	t.Helper()

	var records []models.HistoricalDemandRecord
	for li, location := range []string{"Colombo", "Kandy"} {
		for pi, product := range []string{"Carrot", "Beans"} {
			for year := 2022; year <= 2024; year++ {
				for month := 1; month <= 12; month++ {
					records = append(records, models.HistoricalDemandRecord{
						Location: location,
						Product:  product,
						Month:    month,
						Year:     year,
						DemandKg: 100 + 20*float64(li) + 10*float64(pi) + 1.5*float64(month),
					})
				}
			}
		}
	}

	locs := make([]string, len(records))
	prods := make([]string, len(records))
	for i, rec := range records {
		locs[i] = rec.Location
		prods[i] = rec.Product
	}
	locEnc := forecast.BuildEncoding(locs)
	prodEnc := forecast.BuildEncoding(prods)

	model, err := forecast.Fit(records, locEnc, prodEnc)
	require.NoError(t, err)
	return forecast.NewGenerator(model, locEnc, prodEnc, 2025)
}

func performPredictions(t *testing.T, handler *ForecastHandler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/predictions", nil)

	handler.GetPredictions(c)
	return w
}

func testRedisClient(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &database.RedisClient{Client: client}, mr
}

func TestForecastHandler_GetPredictions(t *testing.T) {
	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), nil, logger.Logger())

	w := performPredictions(t, handler)

	assert.Equal(t, http.StatusOK, w.Code)

	var entries []models.ForecastEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))

	// 2 locations x 2 products x 12 months.
	require.Len(t, entries, 2*2*12)

	assert.Equal(t, "Colombo", entries[0].Location)
	assert.Equal(t, "Carrot", entries[0].Product)
	assert.Equal(t, "January", entries[0].Month)
	assert.Equal(t, 2025, entries[0].Year)

	assert.Equal(t, "Colombo", entries[12].Location)
	assert.Equal(t, "Beans", entries[12].Product)

	last := entries[len(entries)-1]
	assert.Equal(t, "Kandy", last.Location)
	assert.Equal(t, "Beans", last.Product)
	assert.Equal(t, "December", last.Month)
}

func TestForecastHandler_ResponseFieldNames(t *testing.T) {
	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), nil, logger.Logger())

	w := performPredictions(t, handler)
	require.Equal(t, http.StatusOK, w.Code)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.NotEmpty(t, raw)

	for _, key := range []string{"location", "product", "month", "year", "predicted_quantity"} {
		assert.Contains(t, raw[0], key)
	}
}

func TestForecastHandler_CachePopulated(t *testing.T) {
	redisClient, mr := testRedisClient(t)
	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), redisClient, logger.Logger())

	w := performPredictions(t, handler)
	require.Equal(t, http.StatusOK, w.Code)

	cached, err := mr.Get("forecast:grid:2025")
	require.NoError(t, err)
	assert.JSONEq(t, w.Body.String(), cached)
}

func TestForecastHandler_CacheHit(t *testing.T) {
	redisClient, mr := testRedisClient(t)
	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), redisClient, logger.Logger())

	sentinel := `[{"location":"cached"}]`
	require.NoError(t, mr.Set("forecast:grid:2025", sentinel))

	w := performPredictions(t, handler)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sentinel, w.Body.String())
}

func TestForecastHandler_RedisDownDegrades(t *testing.T) {
	redisClient, mr := testRedisClient(t)
	mr.Close()

	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), redisClient, logger.Logger())

	w := performPredictions(t, handler)

	assert.Equal(t, http.StatusOK, w.Code)
	var entries []models.ForecastEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2*2*12)
}

func TestForecastHandler_GridUniqueness(t *testing.T) {
	logger := logging.NewStandardLogger("error", "test")
	handler := NewForecastHandler(testGenerator(t), nil, logger.Logger())

	w := performPredictions(t, handler)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.ForecastEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))

	seen := make(map[string]bool)
	for _, e := range entries {
		key := fmt.Sprintf("%s|%s|%s", e.Location, e.Product, e.Month)
		assert.False(t, seen[key])
		seen[key] = true
	}
}
