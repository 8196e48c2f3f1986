package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// Minimum fractional advance between progress callbacks.
	progressStep = 0.01
)

// HTTPFetcher downloads stream bytes over HTTP, deriving progress from
// the response Content-Length. Shared by both backends.
type HTTPFetcher struct {
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPFetcher creates a fetcher with a long-lived client. No
// overall request timeout; large downloads are bounded by ctx instead.
func NewHTTPFetcher(log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		log: log,
	}
}

// Download fetches url into dest, creating or truncating the file.
// onProgress (may be nil) receives fractions in [0,1]; without a
// Content-Length no intermediate progress is reported.
func (f *HTTPFetcher) Download(ctx context.Context, url, dest string, onProgress func(float64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	writer := io.Writer(out)
	if onProgress != nil && resp.ContentLength > 0 {
		writer = io.MultiWriter(out, &progressWriter{
			total:      resp.ContentLength,
			onProgress: onProgress,
		})
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if onProgress != nil {
		onProgress(1.0)
	}
	f.log.Debug().Str("dest", dest).Int64("bytes", resp.ContentLength).Msg("download complete")
	return nil
}

// progressWriter counts bytes and emits a callback each time progress
// advances by at least progressStep.
type progressWriter struct {
	total      int64
	written    int64
	lastAt     float64
	onProgress func(float64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	fraction := float64(w.written) / float64(w.total)
	if fraction > 1.0 {
		fraction = 1.0
	}
	if fraction-w.lastAt >= progressStep {
		w.lastAt = fraction
		w.onProgress(fraction)
	}
	return len(p), nil
}
