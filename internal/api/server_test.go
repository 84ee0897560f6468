package api_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lox/airquality/internal/api"
	"github.com/lox/airquality/internal/ingest"
	"github.com/lox/airquality/internal/models"
	"github.com/lox/airquality/internal/session"
)

const header = "No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station\n"

// stationCSV writes rows over two years with varying values so every chart
// has something to draw.
func stationCSV(station string, offset int) string {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 12; i++ {
		year := 2013 + i%2
		fmtRow(&b, i+1, year, i%24, float64(10+3*i+offset), float64(20+2*i+i%3), float64(i%4+2),
			float64(30-i), float64(300+10*i), float64(50+i%5), float64(i)-3, 1020-float64(i)/2,
			float64(i)/2-10, float64(i%3)/10, station)
	}
	b.WriteString("99,2014,3,2,0,NA,30,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4," + station + "\n")
	return b.String()
}

func fmtRow(b *strings.Builder, no, year, hour int, pm25, pm10, so2, no2, co, o3, temp, pres, dewp, rain float64, station string) {
	fields := []string{
		itoa(no), itoa(year), "3", "1", itoa(hour),
		ftoa(pm25), ftoa(pm10), ftoa(so2), ftoa(no2), ftoa(co), ftoa(o3),
		ftoa(temp), ftoa(pres), ftoa(dewp), ftoa(rain), "NW", "2.5", station,
	}
	b.WriteString(strings.Join(fields, ",") + "\n")
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for i, s := range []string{"Aotizhongxin", "Changping"} {
		if err := os.WriteFile(filepath.Join(dir, s+".csv"), []byte(stationCSV(s, i*5)), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func setupServer(t *testing.T, load bool) (*api.Server, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(ingest.NewLoader(nil), models.MetSetRain, nil)
	if load {
		if _, err := mgr.LoadDefault(writeDataDir(t)); err != nil {
			t.Fatalf("LoadDefault: %v", err)
		}
	}
	return api.NewServer(mgr, ":0", time.Minute, nil), mgr
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/health")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health api.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || !health.Loaded || health.Stations != 2 || health.Rows != 24 {
		t.Errorf("health = %+v", health)
	}
}

func TestIndex_NoData(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, false)

	w := get(t, srv.Handler(), "/")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "No data loaded") {
		t.Error("expected no data banner")
	}
	if strings.Contains(body, "/charts/") {
		t.Error("expected no charts without data")
	}
}

func TestIndex_WithData(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<h1>Analyze Air Quality Data</h1>",
		"KDE Plot for Aotizhongxin",
		"Average Pollution Index per Station (2013-2014)",
		"/charts/heatmap.png?",
		"<option>Changping</option>",
		"<option selected>TEMP</option>",
		"<option>RAIN</option>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "<option>WSPM</option>") {
		t.Error("rain met set must not offer WSPM")
	}
}

func TestIndex_SingleStationLine(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/?all=0&line_station=Changping")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Average Pollution Index - Changping") {
		t.Error("expected single station heading")
	}
	if !strings.Contains(body, `id="line_station"`) {
		t.Error("expected line station selector")
	}
}

func TestIndex_UnknownStation(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/?station=Nowhere")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unknown station") {
		t.Error("expected unknown station banner")
	}
}

func TestCharts_PNG(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)
	h := srv.Handler()

	for _, target := range []string{
		"/charts/density.png",
		"/charts/yearly.png",
		"/charts/yearly.png?all=0&line_station=Changping",
		"/charts/scatter.png?station=Changping&met=TEMP&pollutant=CO",
		"/charts/scatter.png?encode=0",
		"/charts/heatmap.png?station=Changping",
	} {
		w := get(t, h, target)
		if w.Code != 200 {
			t.Errorf("%s: expected 200, got %d: %s", target, w.Code, w.Body.String())
			continue
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: Content-Type = %q", target, ct)
		}
		if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
			t.Errorf("%s: decode: %v", target, err)
		}
	}
}

func TestCharts_SVG(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/charts/density.svg")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Error("expected svg document")
	}
}

func TestCharts_CacheReturnsIdenticalBytes(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)
	h := srv.Handler()

	a := get(t, h, "/charts/scatter.png?met=DEWP&pollutant=O3")
	b := get(t, h, "/charts/scatter.png?pollutant=O3&met=DEWP")
	if a.Code != 200 || b.Code != 200 {
		t.Fatalf("codes %d, %d", a.Code, b.Code)
	}
	if !bytes.Equal(a.Body.Bytes(), b.Body.Bytes()) {
		t.Error("expected identical bytes for identical selections")
	}
}

func TestCharts_Errors(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)
	h := srv.Handler()

	tests := []struct {
		target  string
		code    int
		errCode string
	}{
		{"/charts/density.png?station=Nowhere", http.StatusNotFound, "UNKNOWN_STATION"},
		{"/charts/yearly.png?all=0&line_station=Nowhere", http.StatusNotFound, "UNKNOWN_STATION"},
		{"/charts/scatter.png?met=WSPM", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"/charts/scatter.png?pollutant=CO2", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"/charts/pie.png", http.StatusNotFound, "NOT_FOUND"},
		{"/charts/density.gif", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		w := get(t, h, tt.target)
		if w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.code, w.Code)
			continue
		}
		var apiErr api.APIError
		if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
			t.Errorf("%s: decode error body: %v", tt.target, err)
			continue
		}
		if apiErr.ErrorCode != tt.errCode {
			t.Errorf("%s: error_code = %q, want %q", tt.target, apiErr.ErrorCode, tt.errCode)
		}
	}
}

func TestCharts_NoSession(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, false)

	w := get(t, srv.Handler(), "/charts/density.png")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAPIStations(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/api/stations")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp api.StationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if strings.Join(resp.Stations, ",") != "Aotizhongxin,Changping" {
		t.Errorf("stations = %v", resp.Stations)
	}
	if resp.MetSet != models.MetSetRain || len(resp.Pollutants) != 6 {
		t.Errorf("response = %+v", resp)
	}
}

func TestLoad_SetsSessionCookie(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, false)
	h := srv.Handler()

	form := url.Values{"path": {writeDataDir(t)}}
	req := httptest.NewRequest("POST", "/load", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/?loaded=2" {
		t.Errorf("Location = %q", loc)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "aq_session" {
		t.Fatalf("cookies = %v", cookies)
	}

	req = httptest.NewRequest("GET", "/?loaded=2", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	body := w.Body.String()
	if !strings.Contains(body, "Found 2 CSV files!") {
		t.Error("expected success banner")
	}
	if !strings.Contains(body, "KDE Plot for Aotizhongxin") {
		t.Error("expected charts for the loaded session")
	}
}

func TestLoad_FailureKeepsSession(t *testing.T) {
	t.Parallel()
	srv, mgr := setupServer(t, true)
	h := srv.Handler()

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{filepath.Join(t.TempDir(), "missing"), http.StatusUnprocessableEntity, "Invalid folder path"},
		{t.TempDir(), http.StatusUnprocessableEntity, "No CSV files found in the provided folder."},
		{"", http.StatusBadRequest, "Enter the folder path"},
	}
	for _, tt := range tests {
		form := url.Values{"path": {tt.path}}
		req := httptest.NewRequest("POST", "/load", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != tt.code {
			t.Errorf("%q: expected %d, got %d", tt.path, tt.code, w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, tt.message) {
			t.Errorf("%q: expected banner %q", tt.path, tt.message)
		}
		if !strings.Contains(body, "KDE Plot for Aotizhongxin") {
			t.Errorf("%q: expected previous charts to remain", tt.path)
		}
	}
	if mgr.Len() != 1 {
		t.Errorf("sessions = %d, want 1", mgr.Len())
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)

	w := get(t, srv.Handler(), "/preview.png")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1200 || cfg.Height != 630 {
		t.Errorf("preview size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, true)
	h := srv.Handler()
	get(t, h, "/charts/density.png")

	w := get(t, h, "/metrics")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "airquality_chart_renders_total") {
		t.Error("expected chart render counter")
	}
}
