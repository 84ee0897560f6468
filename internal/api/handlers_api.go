package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/lox/airquality/internal/models"
)

func (s *Server) handleAPIStations(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		s.renderError(w, r, errNoSession)
		return
	}
	stations := sess.Stations
	if stations == nil {
		stations = []string{}
	}
	render.JSON(w, r, StationsResponse{
		Session:    sess.ID,
		Source:     sess.Source,
		MetSet:     sess.MetSet,
		Stations:   stations,
		MetParams:  sess.MetSet.Params(),
		Pollutants: models.Pollutants,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:   "ok",
		Sessions: s.sessions.Len(),
	}
	if sess, ok := s.sessions.Default(); ok {
		health.Loaded = true
		health.Stations = len(sess.Stations)
		health.Rows = len(sess.Records)
		health.LoadedAt = sess.LoadedAt
	}
	render.JSON(w, r, health)
}
