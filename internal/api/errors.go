package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/lox/airquality/internal/models"
)

// APIError is the JSON body of every failed API and chart request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// toAPIError maps the load and analysis error taxonomy onto HTTP.
func toAPIError(err error) *APIError {
	var (
		invalidPath  *models.InvalidPathError
		emptyInput   *models.EmptyInputError
		parseErr     *models.ParseError
		missingCol   *models.MissingColumnError
		unknown      *models.UnknownStationError
		insufficient *models.InsufficientDataError
		apiErr       *APIError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &unknown):
		return &APIError{http.StatusNotFound, "UNKNOWN_STATION", err.Error()}
	case errors.As(err, &insufficient):
		return &APIError{http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", err.Error()}
	case errors.As(err, &invalidPath):
		return &APIError{http.StatusUnprocessableEntity, "INVALID_PATH", err.Error()}
	case errors.As(err, &emptyInput):
		return &APIError{http.StatusUnprocessableEntity, "EMPTY_INPUT", err.Error()}
	case errors.As(err, &parseErr):
		return &APIError{http.StatusUnprocessableEntity, "PARSE_ERROR", err.Error()}
	case errors.As(err, &missingCol):
		return &APIError{http.StatusUnprocessableEntity, "MISSING_COLUMN", err.Error()}
	}
	return &APIError{http.StatusInternalServerError, "INTERNAL", err.Error()}
}

var errNoSession = &APIError{http.StatusNotFound, "NO_DATA", "no data loaded"}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Render(w, r, apiErr)
}

// loadMessage is the page banner for a failed load.
func loadMessage(err error) string {
	var (
		invalidPath *models.InvalidPathError
		emptyInput  *models.EmptyInputError
	)
	switch {
	case errors.As(err, &invalidPath):
		return "Invalid folder path. Please check the path and try again."
	case errors.As(err, &emptyInput):
		return "No CSV files found in the provided folder."
	}
	return "An error occurred: " + err.Error()
}
