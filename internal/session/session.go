// Package session builds the per-load analysis state the dashboard renders
// from, and keeps the loaded sessions addressable by id.
package session

import (
	"time"

	"github.com/lox/airquality/internal/analysis"
	"github.com/lox/airquality/internal/models"
)

// Session is the result of one load: the cleaned table and everything
// derived from it. A Session is never modified after Build returns, so it
// can be read from concurrent requests.
type Session struct {
	ID       string
	Source   string
	MetSet   models.MetSet
	LoadedAt time.Time

	Files   []models.FileStat
	RawRows int

	Records  []models.Record
	Indexed  []models.IndexedRecord
	Yearly   []models.YearlyAverage
	Stations []string
}

// Build runs clean, derive and aggregate over a combined table.
func Build(id, source string, combined *models.Combined, met models.MetSet, loadedAt time.Time) *Session {
	records := analysis.Clean(combined.Rows)
	indexed := analysis.WithPollutionIndex(records)
	return &Session{
		ID:       id,
		Source:   source,
		MetSet:   met,
		LoadedAt: loadedAt,
		Files:    combined.Files,
		RawRows:  len(combined.Rows),
		Records:  records,
		Indexed:  indexed,
		Yearly:   analysis.YearlyAverages(indexed),
		Stations: analysis.Stations(records),
	}
}

// HasStation reports whether station is in the station set.
func (s *Session) HasStation(station string) bool {
	for _, st := range s.Stations {
		if st == station {
			return true
		}
	}
	return false
}

// StationRecords returns the cleaned rows of one station.
func (s *Session) StationRecords(station string) ([]models.Record, error) {
	return analysis.FilterStation(s.Records, station)
}

// Correlation returns the meteorology × pollution correlation matrix for
// one station.
func (s *Session) Correlation(station string) (analysis.Matrix, error) {
	records, err := s.StationRecords(station)
	if err != nil {
		return analysis.Matrix{}, err
	}
	return analysis.Correlate(records, s.MetSet.Params(), models.Pollutants)
}

// YearSpan returns the first and last year in the yearly averages.
func (s *Session) YearSpan() (first, last int, ok bool) {
	return analysis.YearSpan(s.Yearly)
}
