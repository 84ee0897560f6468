package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/lox/airquality/internal/charts"
	"github.com/lox/airquality/internal/models"
	"github.com/lox/airquality/internal/session"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := &IndexData{}
	status := http.StatusOK

	if n := r.URL.Query().Get("loaded"); n != "" {
		if files, err := strconv.Atoi(n); err == nil {
			data.Banner = &Banner{Kind: "success", Message: "Found " + strconv.Itoa(files) + " CSV files!"}
		}
	}

	if sess, ok := s.currentSession(r); ok {
		if err := s.fillIndex(data, sess, r); err != nil {
			apiErr := toAPIError(err)
			status = apiErr.StatusCode
			data.Banner = &Banner{Kind: "error", Message: apiErr.Message}
			data.Charts = nil
		}
	} else if data.Banner == nil {
		data.Banner = &Banner{Kind: "info", Message: "No data loaded. Enter the folder path containing CSV files."}
	}

	s.renderPage(w, status, data)
}

func (s *Server) fillIndex(data *IndexData, sess *session.Session, r *http.Request) error {
	data.Loaded = true
	data.Source = sess.Source
	data.Path = sess.Source
	data.LoadedAt = sess.LoadedAt
	data.FileCount = len(sess.Files)
	data.RawRows = sess.RawRows
	data.Rows = len(sess.Records)
	data.Stations = sess.Stations
	data.MetParams = sess.MetSet.Params()
	data.Pollutants = models.Pollutants
	data.YearlyTitle = charts.YearlyTitle(sess.Yearly)

	if len(sess.Stations) == 0 {
		return &models.InsufficientDataError{What: "charts", Rows: 0}
	}

	data.Selection = parseSelection(r.URL.Query(), sess)
	if err := s.check(data.Selection, sess); err != nil {
		return err
	}
	data.ChartQuery = data.Selection.Query()
	data.Charts = chartViews(data)
	return nil
}

// handleLoad loads a folder or archive for this browser. A failed load
// leaves the current session untouched.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	if path == "" {
		s.renderLoadError(w, r, path, &APIError{http.StatusBadRequest, "MISSING_PARAMETER", "Enter the folder path containing CSV files."})
		return
	}

	sess, err := s.sessions.Load(path)
	if err != nil {
		s.renderLoadError(w, r, path, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/?loaded="+strconv.Itoa(len(sess.Files)), http.StatusSeeOther)
}

func (s *Server) renderLoadError(w http.ResponseWriter, r *http.Request, path string, err error) {
	data := &IndexData{Path: path}
	if sess, ok := s.currentSession(r); ok {
		if ferr := s.fillIndex(data, sess, r); ferr != nil {
			data.Charts = nil
		}
		data.Path = path
	}

	status := toAPIError(err).StatusCode
	msg := loadMessage(err)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	data.Banner = &Banner{Kind: "error", Message: msg}
	s.renderPage(w, status, data)
}

// renderPage executes the template into a buffer so a template failure
// never sends a partial page.
func (s *Server) renderPage(w http.ResponseWriter, status int, data *IndexData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
