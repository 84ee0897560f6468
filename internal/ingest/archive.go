package ingest

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/pgzip"

	"github.com/lox/airquality/internal/models"
)

// IsArchive reports whether path names a supported archive.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".zip") ||
		strings.HasSuffix(lower, ".tar.gz") ||
		strings.HasSuffix(lower, ".tgz")
}

// Extract unpacks a .zip, .tar.gz or .tgz archive into dest.
func Extract(archive, dest string) error {
	info, err := os.Stat(archive)
	if err != nil {
		return &models.InvalidPathError{Path: archive, Reason: "archive does not exist"}
	}
	if info.IsDir() {
		return &models.InvalidPathError{Path: archive, Reason: "archive is a directory"}
	}

	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archive, dest)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(archive, dest)
	}
	return &models.InvalidPathError{Path: archive, Reason: "unsupported archive type"}
}

// entryPath resolves an archive entry name inside dest, rejecting names
// that would land outside it.
func entryPath(archive, dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	root := filepath.Clean(dest) + string(os.PathSeparator)
	if !strings.HasPrefix(target, root) {
		return "", &models.ParseError{File: archive, Err: fmt.Errorf("entry %q escapes extraction directory", name)}
	}
	return target, nil
}

// skipEntry filters resource-fork noise that macOS adds to zip files.
func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(filepath.Base(name), "._")
}

func extractZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return &models.ParseError{File: archive, Err: err}
	}
	defer zr.Close()

	for _, f := range zr.File {
		if skipEntry(f.Name) {
			continue
		}
		target, err := entryPath(archive, dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return &models.ParseError{File: archive, Err: fmt.Errorf("open entry %s: %w", f.Name, err)}
		}
		err = writeFile(target, rc)
		rc.Close()
		if err != nil {
			return &models.ParseError{File: archive, Err: fmt.Errorf("extract %s: %w", f.Name, err)}
		}
	}
	return nil
}

func extractTarGz(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return &models.InvalidPathError{Path: archive, Reason: err.Error()}
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return &models.ParseError{File: archive, Err: err}
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &models.ParseError{File: archive, Err: err}
		}
		if skipEntry(hdr.Name) {
			continue
		}
		target, err := entryPath(archive, dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return &models.ParseError{File: archive, Err: fmt.Errorf("extract %s: %w", hdr.Name, err)}
			}
		}
	}
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
