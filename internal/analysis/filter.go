package analysis

import (
	"github.com/lox/airquality/internal/models"
)

// Stations returns the distinct station identifiers in first-appearance order.
func Stations[R interface{ StationID() string }](records []R) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		s := r.StationID()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// FilterStation returns the records of one station. The station must be
// present in records.
func FilterStation[R interface{ StationID() string }](records []R, station string) ([]R, error) {
	var out []R
	for _, r := range records {
		if r.StationID() == station {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, &models.UnknownStationError{Station: station}
	}
	return out, nil
}

// Column extracts a named numeric column. The name must be a schema column.
func Column(records []models.Record, name string) ([]float64, error) {
	if _, ok := (models.Record{}).Value(name); !ok {
		return nil, &models.MissingColumnError{Column: name}
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i], _ = r.Value(name)
	}
	return out, nil
}
