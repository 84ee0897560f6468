package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airquality_loads_total",
			Help: "Total data loads by outcome",
		},
		[]string{"status"},
	)

	RowsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "airquality_rows_loaded",
			Help: "Rows in the most recently loaded session by pipeline stage",
		},
		[]string{"stage"},
	)

	ChartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airquality_chart_renders_total",
			Help: "Total chart renders by chart and outcome",
		},
		[]string{"chart", "status"},
	)

	ChartRenderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airquality_chart_render_seconds",
			Help:    "Chart render latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chart"},
	)
)
