package ingest

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/lox/airquality/internal/models"
)

// Loader reads station files into a combined table.
type Loader struct {
	logger *slog.Logger

	// RemoteTimeout bounds how long an ftp:// download is retried.
	RemoteTimeout time.Duration
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "loader"), RemoteTimeout: ftpMaxElapsed}
}

// Load reads a directory, or an archive when source has an archive suffix.
// An ftp:// URL naming an archive is downloaded first.
func (l *Loader) Load(source string) (*models.Combined, error) {
	if IsRemote(source) {
		return l.LoadRemote(source)
	}
	if IsArchive(source) {
		return l.LoadArchive(source)
	}
	return l.LoadDir(source)
}

// LoadDir reads every top-level station file in dir.
func (l *Loader) LoadDir(dir string) (*models.Combined, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &models.InvalidPathError{Path: dir, Reason: "directory does not exist"}
	}
	if !info.IsDir() {
		return nil, &models.InvalidPathError{Path: dir, Reason: "not a directory"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &models.InvalidPathError{Path: dir, Reason: err.Error()}
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isStationFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return l.loadFiles(dir, files)
}

// LoadArchive extracts the archive into a temporary working directory,
// loads every station file found anywhere inside it, then removes the
// working directory.
func (l *Loader) LoadArchive(archive string) (*models.Combined, error) {
	work, err := os.MkdirTemp("", "airquality-*")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			l.logger.Warn("remove working directory", "dir", work, "error", err)
		}
	}()

	start := time.Now()
	if err := Extract(archive, work); err != nil {
		return nil, err
	}
	l.logger.Debug("archive extracted", "archive", archive, "dir", work, "elapsed", time.Since(start))

	var files []string
	err = filepath.WalkDir(work, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isStationFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan extracted archive: %w", err)
	}
	sort.Strings(files)

	return l.loadFiles(archive, files)
}

// LoadRemote downloads an archive over FTP and loads it. The combined
// table reports the URL as its source.
func (l *Loader) LoadRemote(rawURL string) (*models.Combined, error) {
	work, err := os.MkdirTemp("", "airquality-ftp-*")
	if err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	defer os.RemoveAll(work)

	start := time.Now()
	local, err := fetchFTP(rawURL, work, l.RemoteTimeout)
	if err != nil {
		return nil, err
	}
	l.logger.Info("archive downloaded", "url", rawURL, "elapsed", time.Since(start))
	return l.LoadArchive(local)
}

func (l *Loader) loadFiles(source string, files []string) (*models.Combined, error) {
	if len(files) == 0 {
		return nil, &models.EmptyInputError{Dir: source}
	}

	combined := &models.Combined{}
	for _, path := range files {
		name := filepath.Base(path)
		station := stationName(name)
		rows, err := readStationFile(path, name, station)
		if err != nil {
			return nil, err
		}
		combined.Rows = append(combined.Rows, rows...)
		combined.Files = append(combined.Files, models.FileStat{Name: name, Station: station, Rows: len(rows)})
		l.logger.Debug("station file loaded", "file", name, "station", station, "rows", len(rows))
	}
	l.logger.Info("station files loaded", "source", source, "files", len(files), "rows", len(combined.Rows))
	return combined, nil
}

func readStationFile(path, name, station string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.ParseError{File: name, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, &models.ParseError{File: name, Err: err}
		}
		defer gz.Close()
		r = gz
	}
	return parseStationCSV(r, name, station)
}

func isStationFile(name string) bool {
	if strings.HasPrefix(name, "._") {
		return false
	}
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}
