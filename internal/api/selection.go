package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lox/airquality/internal/models"
	"github.com/lox/airquality/internal/session"
)

// Selection is the user's control state: which station, parameters and
// line chart mode the charts are drawn for.
type Selection struct {
	Station     string `validate:"required,max=128"`
	Met         string `validate:"required,metparam"`
	Pollutant   string `validate:"required,oneof=PM10 PM2.5 CO SO2 NO2 O3"`
	All         bool
	LineStation string `validate:"required,max=128"`
	Encode      bool
}

func newValidator(met models.MetSet) *validator.Validate {
	v := validator.New()
	params := met.Params()
	v.RegisterValidation("metparam", func(fl validator.FieldLevel) bool {
		return slices.Contains(params, fl.Field().String())
	})
	return v
}

// parseSelection reads the controls from the query string, filling gaps
// with the first option of each control.
func parseSelection(q url.Values, sess *session.Session) Selection {
	sel := Selection{
		Station:     q.Get("station"),
		Met:         q.Get("met"),
		Pollutant:   q.Get("pollutant"),
		All:         flag(q, "all", true),
		LineStation: q.Get("line_station"),
		Encode:      flag(q, "encode", sess.MetSet == models.MetSetRain),
	}
	if sel.Station == "" && len(sess.Stations) > 0 {
		sel.Station = sess.Stations[0]
	}
	if sel.Met == "" {
		sel.Met = sess.MetSet.Params()[0]
	}
	if sel.Pollutant == "" {
		sel.Pollutant = models.Pollutants[0]
	}
	if sel.LineStation == "" {
		sel.LineStation = sel.Station
	}
	return sel
}

// flag reads a checkbox. Forms send a hidden "0" ahead of the checkbox so
// the last value wins; an absent parameter means def.
func flag(q url.Values, name string, def bool) bool {
	values := q[name]
	if len(values) == 0 {
		return def
	}
	switch strings.ToLower(values[len(values)-1]) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// check validates the selection's shape, then that its stations exist.
func (s *Server) check(sel Selection, sess *session.Session) error {
	if err := s.validate.Struct(sel); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &APIError{http.StatusBadRequest, "VALIDATION_FAILED",
				fmt.Sprintf("invalid %s %q", strings.ToLower(fe.Field()), fe.Value())}
		}
		return &APIError{http.StatusBadRequest, "VALIDATION_FAILED", err.Error()}
	}
	for _, st := range []string{sel.Station, sel.LineStation} {
		if !sess.HasStation(st) {
			return &models.UnknownStationError{Station: st}
		}
	}
	return nil
}

// Query encodes the selection as chart URL parameters.
func (sel Selection) Query() string {
	q := url.Values{}
	q.Set("station", sel.Station)
	q.Set("met", sel.Met)
	q.Set("pollutant", sel.Pollutant)
	q.Set("all", boolParam(sel.All))
	q.Set("line_station", sel.LineStation)
	q.Set("encode", boolParam(sel.Encode))
	return q.Encode()
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
