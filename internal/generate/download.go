package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// Downloader persists generated images under a local output directory.
//
// The directory is created on demand and never cleaned; concurrent writers are
// safe because filenames are unique per image (see Filename) and the create is
// idempotent.
type Downloader struct {
	dir        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewDownloader returns a Downloader rooted at dir. A nil httpClient falls back
// to http.DefaultClient.
func NewDownloader(dir string, httpClient *http.Client, logger zerolog.Logger) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{dir: dir, httpClient: httpClient, logger: logger}
}

// Dir returns the output directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Download fetches url and streams the body to filename inside the output
// directory, returning the local path. The body is copied straight to disk
// without buffering the whole payload in memory. On a non-2xx response or a
// write failure the partial file is removed and a DownloadError is returned.
//
// A failed download never aborts its request: callers record the error against
// the single image it belongs to and continue.
func (d *Downloader) Download(ctx context.Context, url, filename string) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("create output directory: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	path := filepath.Join(d.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", &DownloadError{URL: url, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &DownloadError{URL: url, Err: err}
	}

	d.logger.Info().Str("path", path).Str("url", url).Msg("Stored image")
	return path, nil
}

// ProbeDimensions decodes a saved image file and reports its pixel dimensions.
// Used when the API response did not include per-image dimensions.
func ProbeDimensions(path string) (Size, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Size{}, fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	return Size{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
