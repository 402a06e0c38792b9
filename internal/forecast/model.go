package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// ErrEmptyDataset is returned when fitting against zero records.
var ErrEmptyDataset = errors.New("forecast: empty dataset")

// Model is an ordinary-least-squares linear regression over the input
// vector [location_code, product_code, month, year]. It is immutable
// after Fit and safe for unlimited concurrent use.
type Model struct {
	coefficients [4]float64
	intercept    float64
}

// Fit trains the demand model on the historical corpus using the given
// category encodings. Both encodings must have been built from the same
// corpus: a record whose location or product has no code is an error.
func Fit(records []models.HistoricalDemandRecord, locations, products *Encoding) (*Model, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	// Design matrix columns: intercept, location_code, product_code, month, year.
	const k = 5
	n := len(records)
	x := make([][k]float64, n)
	y := make([]float64, n)

	for i, rec := range records {
		locCode, ok := locations.Code(rec.Location)
		if !ok {
			return nil, fmt.Errorf("forecast: location %q has no code in the training encoding", rec.Location)
		}
		prodCode, ok := products.Code(rec.Product)
		if !ok {
			return nil, fmt.Errorf("forecast: product %q has no code in the training encoding", rec.Product)
		}
		x[i] = [k]float64{1, float64(locCode), float64(prodCode), float64(rec.Month), float64(rec.Year)}
		y[i] = rec.DemandKg
	}

	// Normal equations: (X'X) beta = X'y.
	var xtx [k][k]float64
	var xty [k]float64
	for t := 0; t < n; t++ {
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				xtx[i][j] += x[t][i] * x[t][j]
			}
			xty[i] += x[t][i] * y[t]
		}
	}

	beta, err := solveSymmetric(xtx, xty)
	if err != nil {
		return nil, err
	}

	m := &Model{intercept: beta[0]}
	copy(m.coefficients[:], beta[1:])
	return m, nil
}

// Predict returns the modeled demand in kg for the given encoded
// location and product at (month, year).
func (m *Model) Predict(locationCode, productCode, month, year int) float64 {
	return m.intercept +
		m.coefficients[0]*float64(locationCode) +
		m.coefficients[1]*float64(productCode) +
		m.coefficients[2]*float64(month) +
		m.coefficients[3]*float64(year)
}

// Coefficients returns the fitted feature coefficients in input order.
func (m *Model) Coefficients() [4]float64 {
	return m.coefficients
}

// Intercept returns the fitted intercept.
func (m *Model) Intercept() float64 {
	return m.intercept
}

// solveSymmetric solves A*x=b for symmetric positive definite A by Cholesky.
func solveSymmetric(a [5][5]float64, b [5]float64) ([5]float64, error) {
	const n = 5
	var l [n][n]float64

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			var sum float64
			for p := 0; p < j; p++ {
				sum += l[i][p] * l[j][p]
			}
			if i == j {
				val := a[i][i] - sum
				if val <= 0 {
					return [n]float64{}, errors.New("forecast: design matrix is degenerate, cannot fit model")
				}
				l[i][j] = math.Sqrt(val)
			} else {
				l[i][j] = (a[i][j] - sum) / l[j][j]
			}
		}
	}

	// Forward substitution: L*z = b.
	var z [n]float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < i; j++ {
			sum += l[i][j] * z[j]
		}
		z[i] = (b[i] - sum) / l[i][i]
	}

	// Back substitution: L'*x = z.
	var out [n]float64
	for i := n - 1; i >= 0; i-- {
		var sum float64
		for j := i + 1; j < n; j++ {
			sum += l[j][i] * out[j]
		}
		out[i] = (z[i] - sum) / l[i][i]
	}

	return out, nil
}
