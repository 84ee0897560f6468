package analysis

import (
	"github.com/lox/airquality/internal/models"
)

// IndexWeights are the pollutant weights of the pollution index. They sum
// to 0.9, so the index is not a weighted mean.
var IndexWeights = map[string]float64{
	models.PM25: 0.3,
	models.PM10: 0.2,
	models.SO2:  0.1,
	models.NO2:  0.1,
	models.CO:   0.1,
	models.O3:   0.1,
}

// indexOrder fixes the summation order so results are bit-for-bit stable.
var indexOrder = []string{models.PM25, models.PM10, models.SO2, models.NO2, models.CO, models.O3}

// PollutionIndex returns the weighted pollutant sum for one record.
func PollutionIndex(r models.Record) float64 {
	return IndexWeights[models.PM25]*r.PM25 +
		IndexWeights[models.PM10]*r.PM10 +
		IndexWeights[models.SO2]*r.SO2 +
		IndexWeights[models.NO2]*r.NO2 +
		IndexWeights[models.CO]*r.CO +
		IndexWeights[models.O3]*r.O3
}

// WithPollutionIndex returns the records augmented with their index.
func WithPollutionIndex(records []models.Record) []models.IndexedRecord {
	out := make([]models.IndexedRecord, len(records))
	for i, r := range records {
		out[i] = models.IndexedRecord{Record: r, PollutionIndex: PollutionIndex(r)}
	}
	return out
}

// PollutionIndexColumns computes the index over name-addressed columns of
// equal length. Every pollutant column must be present.
func PollutionIndexColumns(cols map[string][]float64) ([]float64, error) {
	n := -1
	for _, name := range indexOrder {
		col, ok := cols[name]
		if !ok {
			return nil, &models.MissingColumnError{Column: name}
		}
		if n < 0 {
			n = len(col)
		}
		if len(col) != n {
			return nil, &models.InsufficientDataError{What: "pollution index column " + name, Rows: len(col)}
		}
	}

	out := make([]float64, n)
	for _, name := range indexOrder {
		w := IndexWeights[name]
		for i, v := range cols[name] {
			out[i] += w * v
		}
	}
	return out, nil
}
