package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Some hosts refuse requests without a browser-looking agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"

// Downloader fetches remote images into a local directory tree keyed by the
// source host: <baseDir>/<host>/<basename>. Downloads are idempotent by path;
// a file that already exists is never re-fetched.
type Downloader struct {
	client  *http.Client
	baseDir string
}

// NewDownloader creates a downloader rooted at baseDir (normally "images").
func NewDownloader(baseDir string) *Downloader {
	return &Downloader{
		client:  http.DefaultClient,
		baseDir: baseDir,
	}
}

// LocalPath derives the destination path for a URL without touching the
// network or the filesystem.
func (d *Downloader) LocalPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download url %q: %w", rawURL, err)
	}
	if u.Host == "" || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "", fmt.Errorf("download url %q has no usable host/filename", rawURL)
	}
	return filepath.Join(d.baseDir, u.Host, path.Base(u.Path)), nil
}

// Fetch downloads the URL to its derived local path and returns that path.
// If the file already exists the existing path is returned with no request.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	dest, err := d.LocalPath(rawURL)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dest); err == nil {
		log.Debug().Str("path", dest).Msg("image already downloaded")
		return dest, nil
	}

	log.Info().Str("url", rawURL).Msg("downloading image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download of %s failed: %w", rawURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("download of %s failed: status %s", rawURL, res.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	log.Debug().Str("path", dest).Msg("image downloaded")
	return dest, nil
}

// ResolveRedirect follows redirects for the given URL and returns the final
// location. Used to turn a shared profile link into its canonical URL.
func ResolveRedirect(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rawURL, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.Request.URL.String(), nil
}
