package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lox/airquality/internal/models"
)

type testCLI struct {
	Globals
	Source
	Server
}

func parse(t *testing.T, args ...string) testCLI {
	t.Helper()
	var cli testCLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return cli
}

func TestDefaults(t *testing.T) {
	cli := parse(t)

	if cli.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cli.Listen)
	}
	if cli.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cli.CacheTTL)
	}
	if cli.Met() != models.MetSetRain {
		t.Errorf("Met = %q, want rain", cli.Met())
	}
	if cli.Path() != "" {
		t.Errorf("Path = %q, want empty", cli.Path())
	}
}

func TestFlags(t *testing.T) {
	cli := parse(t, "--met-set=wind", "--data-dir=/data", "--cache-ttl=30s", "--log-format=json")

	if cli.Met() != models.MetSetWind {
		t.Errorf("Met = %q, want wind", cli.Met())
	}
	if cli.Path() != "/data" {
		t.Errorf("Path = %q, want /data", cli.Path())
	}
	if cli.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cli.CacheTTL)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("AIRQUALITY_LISTEN", "127.0.0.1:9000")
	t.Setenv("AIRQUALITY_ARCHIVE", "/tmp/data.zip")
	t.Setenv("AIRQUALITY_DATA_DIR", "/data")

	cli := parse(t)
	if cli.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cli.Listen)
	}
	if cli.Path() != "/tmp/data.zip" {
		t.Errorf("Path = %q, want archive to win", cli.Path())
	}
}

func TestRemoteArchiveKeptVerbatim(t *testing.T) {
	cli := parse(t, "--archive=ftp://example.org/pub/PRSA_Data.zip")
	if cli.Path() != "ftp://example.org/pub/PRSA_Data.zip" {
		t.Errorf("Path = %q", cli.Path())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "rows", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "shown" || rec["rows"] != float64(4) {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "debug", "text")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("loaded", "files", 2)
	if !strings.Contains(buf.String(), "loaded") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewLogger_Errors(t *testing.T) {
	if _, err := NewLogger(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := NewLogger(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for bad format")
	}
}
