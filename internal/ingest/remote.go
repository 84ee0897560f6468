package ingest

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/airquality/internal/models"
)

const (
	ftpDialTimeout = 30 * time.Second
	ftpMaxElapsed  = 2 * time.Minute
)

// IsRemote reports whether source is an ftp:// URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(strings.ToLower(source), "ftp://")
}

type ftpSource struct {
	addr     string
	file     string
	user     string
	password string
}

// parseFTPURL splits an ftp:// URL naming an archive into its dial address,
// remote path and credentials. Anonymous login is used when the URL has none.
func parseFTPURL(raw string) (ftpSource, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ftpSource{}, &models.InvalidPathError{Path: raw, Reason: err.Error()}
	}
	if u.Scheme != "ftp" || u.Hostname() == "" {
		return ftpSource{}, &models.InvalidPathError{Path: raw, Reason: "not an ftp URL"}
	}
	if u.Path == "" || !IsArchive(u.Path) {
		return ftpSource{}, &models.InvalidPathError{Path: raw, Reason: "remote source must be an archive"}
	}

	src := ftpSource{
		addr:     u.Host,
		file:     u.Path,
		user:     "anonymous",
		password: "anonymous",
	}
	if u.Port() == "" {
		src.addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if u.User != nil {
		src.user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			src.password = p
		}
	}
	return src, nil
}

// fetchFTP downloads the archive at raw into dir and returns the local
// path. Connection failures are retried with exponential backoff; a missing
// file or a refused login is not.
func fetchFTP(raw, dir string, maxElapsed time.Duration) (string, error) {
	src, err := parseFTPURL(raw)
	if err != nil {
		return "", err
	}
	local := filepath.Join(dir, path.Base(src.file))

	operation := func() error {
		conn, err := ftp.Dial(src.addr, ftp.DialWithTimeout(ftpDialTimeout))
		if err != nil {
			return fmt.Errorf("ftp dial: %w", err)
		}
		defer conn.Quit()

		if err := conn.Login(src.user, src.password); err != nil {
			return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
		}

		resp, err := conn.Retr(src.file)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("ftp retr: %w", err))
		}
		defer resp.Close()

		f, err := os.Create(local)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create %s: %w", local, err))
		}
		defer f.Close()

		if _, err := io.Copy(f, resp); err != nil {
			return fmt.Errorf("download: %w", err)
		}
		return f.Close()
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	if err := backoff.Retry(operation, bo); err != nil {
		return "", &models.InvalidPathError{Path: raw, Reason: err.Error()}
	}
	return local, nil
}
