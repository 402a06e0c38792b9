package models

// HistoricalDemandRecord is one row of the historical sales corpus.
// The full set is loaded once at startup and never mutated.
type HistoricalDemandRecord struct {
	Location string  `json:"location" db:"location"`
	Product  string  `json:"product" db:"product"`
	Month    int     `json:"month" db:"month"`
	Year     int     `json:"year" db:"year"`
	DemandKg float64 `json:"demand_kg" db:"demand_kg"`
}

// ForecastEntry is one predicted (location, product, month) cell of the
// forecast grid for the target year.
type ForecastEntry struct {
	Location          string  `json:"location"`
	Product           string  `json:"product"`
	Month             string  `json:"month"`
	Year              int     `json:"year"`
	PredictedQuantity float64 `json:"predicted_quantity"`
}
