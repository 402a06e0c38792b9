package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// Generator produces the exhaustive forecast grid for the target year.
// It owns the trained model and the training-time encodings; all fields
// are fixed at construction, so Generate is safe for unlimited
// concurrent use.
type Generator struct {
	model      *Model
	locations  *Encoding
	products   *Encoding
	targetYear int
}

// NewGenerator builds a Generator from a fitted model and the encodings
// it was trained with.
func NewGenerator(model *Model, locations, products *Encoding, targetYear int) *Generator {
	return &Generator{
		model:      model,
		locations:  locations,
		products:   products,
		targetYear: targetYear,
	}
}

// Generate enumerates every (location, product, month) combination for
// the target year in first-seen order (locations, then products, then
// months) and predicts demand for each. The result always contains
// exactly locations x products x 12 entries.
func (g *Generator) Generate() ([]models.ForecastEntry, error) {
	locations := g.locations.Values()
	products := g.products.Values()
	entries := make([]models.ForecastEntry, 0, len(locations)*len(products)*12)

	for _, location := range locations {
		locCode, ok := g.locations.Code(location)
		if !ok {
			return nil, fmt.Errorf("forecast: location %q has no code in the training encoding", location)
		}
		for _, product := range products {
			prodCode, ok := g.products.Code(product)
			if !ok {
				return nil, fmt.Errorf("forecast: product %q has no code in the training encoding", product)
			}
			for month := 1; month <= 12; month++ {
				predicted := g.model.Predict(locCode, prodCode, month, g.targetYear)
				entries = append(entries, models.ForecastEntry{
					Location:          location,
					Product:           product,
					Month:             time.Month(month).String(),
					Year:              g.targetYear,
					PredictedQuantity: round2(predicted),
				})
			}
		}
	}

	return entries, nil
}

// TargetYear returns the year the grid is generated for.
func (g *Generator) TargetYear() int {
	return g.targetYear
}

// round2 rounds to 2 decimal places, half away from zero. Idempotent:
// rounding an already-rounded value is a no-op.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
