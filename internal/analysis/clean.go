// Package analysis holds the pure table transformations behind the
// dashboard: cleaning, the pollution index, yearly aggregation, station
// filtering, correlation and density estimation.
package analysis

import (
	"database/sql"

	"github.com/lox/airquality/internal/models"
)

// Clean drops every row with a missing value in any column and strips the
// month, day, hour and wind-direction columns. The input is not modified.
func Clean(rows []models.Observation) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, o := range rows {
		if !complete(o) {
			continue
		}
		rec := models.Record{
			Station:   o.Station,
			Year:      int(o.Year.Int64),
			PM25:      o.PM25.Float64,
			PM10:      o.PM10.Float64,
			SO2:       o.SO2.Float64,
			NO2:       o.NO2.Float64,
			CO:        o.CO.Float64,
			O3:        o.O3.Float64,
			Temp:      o.Temp.Float64,
			Pressure:  o.Pressure.Float64,
			Dewpoint:  o.Dewpoint.Float64,
			Rain:      o.Rain.Float64,
			WindSpeed: o.WindSpeed.Float64,
		}
		if len(o.Extra) > 0 {
			rec.Extra = make(map[string]string, len(o.Extra))
			for k, v := range o.Extra {
				rec.Extra[k] = v.String
			}
		}
		out = append(out, rec)
	}
	return out
}

func complete(o models.Observation) bool {
	for _, v := range []sql.NullInt64{o.Year, o.Month, o.Day, o.Hour} {
		if !v.Valid {
			return false
		}
	}
	if !o.WindDir.Valid {
		return false
	}
	for _, v := range []sql.NullFloat64{
		o.PM25, o.PM10, o.SO2, o.NO2, o.CO, o.O3,
		o.Temp, o.Pressure, o.Dewpoint, o.Rain, o.WindSpeed,
	} {
		if !v.Valid {
			return false
		}
	}
	for _, v := range o.Extra {
		if !v.Valid {
			return false
		}
	}
	return true
}
