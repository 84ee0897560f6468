package ingest

import (
	"github.com/lox/airquality/internal/models"
)

// naTokens are the cell values treated as missing, matching the usual
// spreadsheet and pandas spellings of "not available".
var naTokens = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "<NA>", "#N/A", "#NA",
}

// ValidateHeader checks that every required column is present.
func ValidateHeader(file string, header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, col := range models.RequiredColumns {
		if !have[col] {
			return &models.MissingColumnError{File: file, Column: col}
		}
	}
	return nil
}

// isSchemaColumn reports whether the column maps onto a typed Observation field.
func isSchemaColumn(name string) bool {
	if name == models.ColStation {
		return true
	}
	for _, col := range models.RequiredColumns {
		if col == name {
			return true
		}
	}
	return false
}
