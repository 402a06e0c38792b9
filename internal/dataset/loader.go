package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// Load reads the historical demand corpus from a CSV file with a
// location,product,month,year,demand_kg header. Row order is preserved:
// it fixes the first-seen order of the category encodings.
func Load(path string) ([]models.HistoricalDemandRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads historical demand records from CSV content.
func Parse(r io.Reader) ([]models.HistoricalDemandRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("dataset: no data")
	}

	header := normalizeHeader(rows[0])
	locIdx := findIndex(header, "location")
	prodIdx := findIndex(header, "product")
	monthIdx := findIndex(header, "month")
	yearIdx := findIndex(header, "year")
	demandIdx := findIndex(header, "demand_kg")
	if locIdx == -1 || prodIdx == -1 || monthIdx == -1 || yearIdx == -1 || demandIdx == -1 {
		return nil, errors.New("dataset: missing required columns (location, product, month, year, demand_kg)")
	}

	maxIdx := locIdx
	for _, idx := range []int{prodIdx, monthIdx, yearIdx, demandIdx} {
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	records := make([]models.HistoricalDemandRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) <= maxIdx {
			return nil, fmt.Errorf("dataset: row %d has %d columns, expected at least %d", i+2, len(row), maxIdx+1)
		}

		month, err := strconv.Atoi(strings.TrimSpace(row[monthIdx]))
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: invalid month %q: %w", i+2, row[monthIdx], err)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("dataset: row %d: month %d out of range", i+2, month)
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: invalid year %q: %w", i+2, row[yearIdx], err)
		}

		demand, err := strconv.ParseFloat(strings.TrimSpace(row[demandIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: invalid demand_kg %q: %w", i+2, row[demandIdx], err)
		}

		records = append(records, models.HistoricalDemandRecord{
			Location: strings.TrimSpace(row[locIdx]),
			Product:  strings.TrimSpace(row[prodIdx]),
			Month:    month,
			Year:     year,
			DemandKg: demand,
		})
	}

	if len(records) == 0 {
		return nil, errors.New("dataset: no records")
	}

	return records, nil
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, col := range row {
		out[i] = strings.ToLower(strings.TrimSpace(col))
	}
	return out
}

func findIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
