package models

import (
	"database/sql"
)

// Source column names as they appear in station CSV headers.
const (
	ColYear    = "year"
	ColMonth   = "month"
	ColDay     = "day"
	ColHour    = "hour"
	ColWindDir = "wd"
	ColStation = "station"

	PM25 = "PM2.5"
	PM10 = "PM10"
	SO2  = "SO2"
	NO2  = "NO2"
	CO   = "CO"
	O3   = "O3"

	TEMP = "TEMP"
	PRES = "PRES"
	DEWP = "DEWP"
	RAIN = "RAIN"
	WSPM = "WSPM"
)

// Pollutants lists the pollution parameters in selector order.
var Pollutants = []string{PM10, PM25, CO, SO2, NO2, O3}

// Meteorology lists every meteorological column the schema carries.
var Meteorology = []string{TEMP, PRES, DEWP, RAIN, WSPM}

// RequiredColumns must be present in every station file.
var RequiredColumns = []string{
	ColYear, ColMonth, ColDay, ColHour, ColWindDir,
	PM25, PM10, SO2, NO2, CO, O3,
	TEMP, PRES, DEWP, RAIN, WSPM,
}

// DroppedColumns are removed by cleaning.
var DroppedColumns = []string{ColMonth, ColDay, ColHour, ColWindDir}

// MetSet selects which meteorological parameters the dashboard offers.
type MetSet string

const (
	MetSetRain MetSet = "rain" // TEMP, PRES, DEWP, RAIN
	MetSetWind MetSet = "wind" // TEMP, PRES, DEWP, WSPM
)

// Params returns the meteorological parameters for the set.
func (m MetSet) Params() []string {
	if m == MetSetWind {
		return []string{TEMP, PRES, DEWP, WSPM}
	}
	return []string{TEMP, PRES, DEWP, RAIN}
}

// Observation is one raw row of a station file. Any field may be missing.
type Observation struct {
	Station string
	Year    sql.NullInt64
	Month   sql.NullInt64
	Day     sql.NullInt64
	Hour    sql.NullInt64
	WindDir sql.NullString

	PM25 sql.NullFloat64
	PM10 sql.NullFloat64
	SO2  sql.NullFloat64
	NO2  sql.NullFloat64
	CO   sql.NullFloat64
	O3   sql.NullFloat64

	Temp      sql.NullFloat64
	Pressure  sql.NullFloat64
	Dewpoint  sql.NullFloat64
	Rain      sql.NullFloat64
	WindSpeed sql.NullFloat64

	// Extra holds source columns outside the schema, e.g. the row number "No".
	Extra map[string]sql.NullString
}

// Combined is the concatenation of every station file in load order.
type Combined struct {
	Rows []Observation
	// Files maps each loaded file name to its row count.
	Files []FileStat
}

type FileStat struct {
	Name    string
	Station string
	Rows    int
}

// Record is a cleaned row: every field is present and the calendar
// columns other than year are gone.
type Record struct {
	Station string
	Year    int

	PM25 float64
	PM10 float64
	SO2  float64
	NO2  float64
	CO   float64
	O3   float64

	Temp      float64
	Pressure  float64
	Dewpoint  float64
	Rain      float64
	WindSpeed float64

	Extra map[string]string
}

// StationID returns the station the record belongs to.
func (r Record) StationID() string { return r.Station }

// Value returns the named numeric column of the record.
func (r Record) Value(column string) (float64, bool) {
	switch column {
	case PM25:
		return r.PM25, true
	case PM10:
		return r.PM10, true
	case SO2:
		return r.SO2, true
	case NO2:
		return r.NO2, true
	case CO:
		return r.CO, true
	case O3:
		return r.O3, true
	case TEMP:
		return r.Temp, true
	case PRES:
		return r.Pressure, true
	case DEWP:
		return r.Dewpoint, true
	case RAIN:
		return r.Rain, true
	case WSPM:
		return r.WindSpeed, true
	case ColYear:
		return float64(r.Year), true
	}
	return 0, false
}

// IndexedRecord is a cleaned row with its derived pollution index.
type IndexedRecord struct {
	Record
	PollutionIndex float64
}

// YearlyAverage is the mean pollution index of one (year, station) group.
type YearlyAverage struct {
	Year           int
	Station        string
	PollutionIndex float64
	Count          int
}
