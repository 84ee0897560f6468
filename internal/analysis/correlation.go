package analysis

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/airquality/internal/models"
)

// Coefficient is one Pearson correlation cell. Defined is false when either
// column has zero variance over the rows, in which case Value is meaningless.
type Coefficient struct {
	Value   float64
	Defined bool
}

// MarshalJSON encodes undefined coefficients as null.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// Matrix is a correlation matrix with named rows and columns.
type Matrix struct {
	Rows  []string
	Cols  []string
	Cells [][]Coefficient
}

// At returns the coefficient for a row and column name.
func (m Matrix) At(row, col string) (Coefficient, bool) {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Cols {
			if c == col {
				return m.Cells[i][j], true
			}
		}
	}
	return Coefficient{}, false
}

// Correlate computes the Pearson coefficient between every named row column
// and every named column over records.
func Correlate(records []models.Record, rows, cols []string) (Matrix, error) {
	if len(records) < 2 {
		return Matrix{}, &models.InsufficientDataError{What: "correlation", Rows: len(records)}
	}

	data := make(map[string][]float64)
	for _, name := range append(append([]string{}, rows...), cols...) {
		if _, ok := data[name]; ok {
			continue
		}
		col, err := Column(records, name)
		if err != nil {
			return Matrix{}, err
		}
		data[name] = col
	}

	m := Matrix{Rows: rows, Cols: cols, Cells: make([][]Coefficient, len(rows))}
	for i, r := range rows {
		m.Cells[i] = make([]Coefficient, len(cols))
		for j, c := range cols {
			m.Cells[i][j] = pearson(data[r], data[c])
		}
	}
	return m, nil
}

func pearson(x, y []float64) Coefficient {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return Coefficient{}
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return Coefficient{}
	}
	return Coefficient{Value: math.Max(-1, math.Min(1, r)), Defined: true}
}
