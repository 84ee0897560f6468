package api

import (
	"time"

	"github.com/lox/airquality/internal/charts"
	"github.com/lox/airquality/internal/models"
)

// Banner is a status message shown above the dashboard.
type Banner struct {
	Kind    string // "success", "error" or "info"
	Message string
}

// IndexData is the view model of the dashboard page.
type IndexData struct {
	Banner *Banner
	Path   string

	Loaded    bool
	Source    string
	LoadedAt  time.Time
	FileCount int
	RawRows   int
	Rows      int

	Stations   []string
	MetParams  []string
	Pollutants []string
	Selection  Selection

	YearlyTitle string
	ChartQuery  string
	Charts      []ChartView
}

// ChartView is one chart section on the page.
type ChartView struct {
	Kind    charts.Kind
	Heading string
	URL     string
}

func chartViews(d *IndexData) []ChartView {
	sel := d.Selection
	q := "?" + d.ChartQuery
	yearly := d.YearlyTitle
	if !sel.All {
		yearly = "Average Pollution Index - " + sel.LineStation
	}
	return []ChartView{
		{charts.KindDensity, "KDE Plot for " + sel.Station, "/charts/density.png" + q},
		{charts.KindYearly, yearly, "/charts/yearly.png" + q},
		{charts.KindScatter, "Scatter Plot for " + sel.Station, "/charts/scatter.png" + q},
		{charts.KindHeatmap, "Correlation between Meteorology and Pollution", "/charts/heatmap.png" + q},
	}
}

// StationsResponse is the body of /api/stations.
type StationsResponse struct {
	Session    string        `json:"session"`
	Source     string        `json:"source"`
	MetSet     models.MetSet `json:"met_set"`
	Stations   []string      `json:"stations"`
	MetParams  []string      `json:"met_params"`
	Pollutants []string      `json:"pollutants"`
}

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status   string    `json:"status"`
	Loaded   bool      `json:"loaded"`
	Sessions int       `json:"sessions"`
	Stations int       `json:"stations,omitempty"`
	Rows     int       `json:"rows,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
}
