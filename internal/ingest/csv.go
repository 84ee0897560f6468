package ingest

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/lox/airquality/internal/models"
)

// stationName derives the station identifier from a file name: the text
// before the first dot.
func stationName(fileName string) string {
	name, _, _ := strings.Cut(fileName, ".")
	return name
}

// column is one source column read as text, with missing cells flagged.
type column struct {
	values  []string
	missing []bool
}

func (c column) float(i int) (sql.NullFloat64, error) {
	if c.missing[i] {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.values[i]), 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}, fmt.Errorf("%q is not a finite number", c.values[i])
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

func (c column) int(i int) (sql.NullInt64, error) {
	f, err := c.float(i)
	if err != nil || !f.Valid {
		return sql.NullInt64{}, err
	}
	if f.Float64 != math.Trunc(f.Float64) {
		return sql.NullInt64{}, fmt.Errorf("%q is not a whole number", c.values[i])
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}, nil
}

func (c column) str(i int) sql.NullString {
	if c.missing[i] {
		return sql.NullString{}
	}
	return sql.NullString{String: c.values[i], Valid: true}
}

// headerOnly reports whether data holds a header record and nothing else,
// returning the header. gota refuses such files, but they are an empty table.
func headerOnly(data []byte) ([]string, bool) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, false
	}
	if _, err := cr.Read(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return header, true
}

// parseStationCSV reads one station file into observations tagged with station.
func parseStationCSV(r io.Reader, file, station string) ([]models.Observation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.ParseError{File: file, Err: err}
	}
	if header, ok := headerOnly(data); ok {
		if err := ValidateHeader(file, header); err != nil {
			return nil, err
		}
		return []models.Observation{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naTokens),
	)
	if df.Err != nil {
		return nil, &models.ParseError{File: file, Err: df.Err}
	}

	names := df.Names()
	if err := ValidateHeader(file, names); err != nil {
		return nil, err
	}

	cols := make(map[string]column, len(names))
	var extras []string
	for _, name := range names {
		s := df.Col(name)
		cols[name] = column{values: s.Records(), missing: s.IsNaN()}
		if !isSchemaColumn(name) {
			extras = append(extras, name)
		}
	}

	n := df.Nrow()
	rows := make([]models.Observation, 0, n)
	for i := 0; i < n; i++ {
		line := i + 2
		obs := models.Observation{
			Station: station,
			WindDir: cols[models.ColWindDir].str(i),
		}

		var err error
		for _, f := range []struct {
			name string
			dst  *sql.NullInt64
		}{
			{models.ColYear, &obs.Year},
			{models.ColMonth, &obs.Month},
			{models.ColDay, &obs.Day},
			{models.ColHour, &obs.Hour},
		} {
			if *f.dst, err = cols[f.name].int(i); err != nil {
				return nil, &models.ParseError{File: file, Line: line, Column: f.name, Err: err}
			}
		}

		for _, f := range []struct {
			name string
			dst  *sql.NullFloat64
		}{
			{models.PM25, &obs.PM25},
			{models.PM10, &obs.PM10},
			{models.SO2, &obs.SO2},
			{models.NO2, &obs.NO2},
			{models.CO, &obs.CO},
			{models.O3, &obs.O3},
			{models.TEMP, &obs.Temp},
			{models.PRES, &obs.Pressure},
			{models.DEWP, &obs.Dewpoint},
			{models.RAIN, &obs.Rain},
			{models.WSPM, &obs.WindSpeed},
		} {
			if *f.dst, err = cols[f.name].float(i); err != nil {
				return nil, &models.ParseError{File: file, Line: line, Column: f.name, Err: err}
			}
		}

		if len(extras) > 0 {
			obs.Extra = make(map[string]sql.NullString, len(extras))
			for _, name := range extras {
				obs.Extra[name] = cols[name].str(i)
			}
		}
		rows = append(rows, obs)
	}
	return rows, nil
}
