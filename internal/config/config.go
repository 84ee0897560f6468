// Package config holds the command-line configuration shared by the
// airquality commands and builds the process logger from it.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/lox/airquality/internal/models"
)

// Globals are the flags every command accepts.
type Globals struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error" env:"AIRQUALITY_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log output format (text, json)." default:"text" enum:"text,json" env:"AIRQUALITY_LOG_FORMAT"`
	MetSet    string `name:"met-set" help:"Meteorological parameters offered (rain: TEMP/PRES/DEWP/RAIN, wind: TEMP/PRES/DEWP/WSPM)." default:"rain" enum:"rain,wind" env:"AIRQUALITY_MET_SET"`
}

// Source locates the station data. Archive wins over DataDir when both are set.
type Source struct {
	DataDir string `name:"data-dir" help:"Directory of per-station CSV files." type:"path" env:"AIRQUALITY_DATA_DIR"`
	Archive string `name:"archive" help:"Archive (.zip, .tar.gz, .tgz) of per-station CSV files, local or ftp://." env:"AIRQUALITY_ARCHIVE"`
}

// Path returns the configured source, or "" when none is set.
func (s Source) Path() string {
	if s.Archive != "" {
		return s.Archive
	}
	return s.DataDir
}

// Server configures the HTTP dashboard.
type Server struct {
	Listen   string        `name:"listen" help:"HTTP listen address." default:":8080" env:"AIRQUALITY_LISTEN"`
	CacheTTL time.Duration `name:"cache-ttl" help:"How long rendered charts are cached (0 disables)." default:"10m" env:"AIRQUALITY_CACHE_TTL"`
}

// Met returns the selected meteorological parameter set.
func (g Globals) Met() models.MetSet {
	if g.MetSet == string(models.MetSetWind) {
		return models.MetSetWind
	}
	return models.MetSetRain
}

// NewLogger builds a text (tint) or JSON slog logger writing to w.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	switch format {
	case "", "text":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
