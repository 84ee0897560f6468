package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/lox/airquality/internal/charts"
	"github.com/lox/airquality/internal/imagegen"
	"github.com/lox/airquality/internal/metrics"
	"github.com/lox/airquality/internal/models"
	"github.com/lox/airquality/internal/session"
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := charts.Kind(chi.URLParam(r, "chart"))
	if !slices.Contains(charts.Kinds, kind) {
		s.renderError(w, r, &APIError{http.StatusNotFound, "NOT_FOUND", "unknown chart " + strconv.Quote(string(kind))})
		return
	}
	format, err := charts.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.renderError(w, r, &APIError{http.StatusNotFound, "NOT_FOUND", err.Error()})
		return
	}
	sess, ok := s.currentSession(r)
	if !ok {
		s.renderError(w, r, errNoSession)
		return
	}
	if len(sess.Stations) == 0 {
		s.renderError(w, r, &models.InsufficientDataError{What: "charts", Rows: 0})
		return
	}

	sel := parseSelection(r.URL.Query(), sess)
	if err := s.check(sel, sess); err != nil {
		s.renderError(w, r, err)
		return
	}

	data, err := s.renderChart(sess, kind, sel, format)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}

// cacheKey identifies one rendered chart. Only the controls the chart
// depends on are part of the key.
func cacheKey(sess *session.Session, kind charts.Kind, sel Selection, format charts.Format) string {
	var params string
	switch kind {
	case charts.KindDensity, charts.KindHeatmap:
		params = sel.Station
	case charts.KindYearly:
		if sel.All {
			params = "all"
		} else {
			params = sel.LineStation
		}
	case charts.KindScatter:
		params = fmt.Sprintf("%s|%s|%s|%t", sel.Station, sel.Met, sel.Pollutant, sel.Encode)
	}
	return sess.ID + "/" + string(kind) + "/" + params + "." + string(format)
}

// renderChart renders into memory, consulting the cache first.
func (s *Server) renderChart(sess *session.Session, kind charts.Kind, sel Selection, format charts.Format) ([]byte, error) {
	key := cacheKey(sess, kind, sel, format)
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	start := time.Now()
	data, err := s.buildChart(sess, kind, sel, format)
	metrics.ChartRenderLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChartRendersTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, err
	}
	metrics.ChartRendersTotal.WithLabelValues(string(kind), "ok").Inc()
	s.cache.Set(key, data)
	return data, nil
}

func (s *Server) buildChart(sess *session.Session, kind charts.Kind, sel Selection, format charts.Format) ([]byte, error) {
	var (
		chart *charts.Chart
		err   error
	)
	switch kind {
	case charts.KindDensity:
		var records []models.Record
		if records, err = sess.StationRecords(sel.Station); err != nil {
			return nil, err
		}
		chart, err = charts.Density(sel.Station, records)
	case charts.KindYearly:
		if sel.All {
			chart, err = charts.YearlyAll(sess.Yearly)
		} else {
			chart, err = charts.YearlySingle(sel.LineStation, sess.Yearly)
		}
	case charts.KindScatter:
		var records []models.Record
		if records, err = sess.StationRecords(sel.Station); err != nil {
			return nil, err
		}
		chart, err = charts.Scatter(sel.Station, sel.Met, sel.Pollutant, records,
			charts.ScatterOptions{ColorByX: sel.Encode, SizeByY: sel.Encode})
	case charts.KindHeatmap:
		matrix, cerr := sess.Correlation(sel.Station)
		if cerr != nil {
			return nil, cerr
		}
		chart, err = charts.Heatmap(sel.Station, matrix)
	default:
		return nil, &APIError{http.StatusNotFound, "NOT_FOUND", "unknown chart " + strconv.Quote(string(kind))}
	}
	if err != nil {
		return nil, err
	}
	return chart.Bytes(format)
}

// handlePreview serves a composite of the dashboard's default charts for
// link previews.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		data, err := imagegen.GenerateFallbackPreview(imagegen.PreviewData{Title: "Analyze Air Quality Data", Subtitle: "No data loaded"})
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		servePNG(w, data)
		return
	}

	key := sess.ID + "/preview"
	if data, ok := s.cache.Get(key); ok {
		servePNG(w, data)
		return
	}

	var images [][]byte
	if len(sess.Stations) > 0 {
		sel := parseSelection(nil, sess)
		for _, kind := range charts.Kinds {
			data, err := s.renderChart(sess, kind, sel, charts.PNG)
			if err != nil {
				s.logger.Warn("preview chart failed", "chart", kind, "error", err)
				continue
			}
			images = append(images, data)
		}
	}

	data, err := imagegen.GeneratePreview(images, previewData(sess))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.cache.Set(key, data)
	servePNG(w, data)
}

func previewData(sess *session.Session) imagegen.PreviewData {
	sub := fmt.Sprintf("%d stations, %s rows", len(sess.Stations), humanize.Comma(int64(len(sess.Records))))
	if first, last, ok := sess.YearSpan(); ok {
		sub += fmt.Sprintf(", %d-%d", first, last)
	}
	return imagegen.PreviewData{Title: "Analyze Air Quality Data", Subtitle: sub}
}

func servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}
