package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultCoverWidth is used when CoverOptions.MaxWidth is unset.
const DefaultCoverWidth = 600

// CoverOptions holds options for localizing a cover image.
type CoverOptions struct {
	// URL is the remote image.
	URL string
	// Dir receives the file.
	Dir string
	// ID names the file: <Dir>/<ID>.jpg
	ID string
	// MaxWidth downsizes wider images, keeping the aspect ratio.
	MaxWidth int
	// Force re-downloads even if the file exists.
	Force bool
	// Client defaults to a 30 second http.Client.
	Client *http.Client
}

// CoverResult holds the result of a cover download.
type CoverResult struct {
	// Downloaded indicates if a new file was written
	Downloaded bool
	// LocalPath is the full path to the cover
	LocalPath string
}

// IsRemoteURL reports whether s is an http or https URL.
func IsRemoteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// CoverPath returns where the cover for id is stored.
func CoverPath(dir, id string) string {
	return filepath.Join(dir, SanitizeFilename(id)+".jpg")
}

// LocalizeCover downloads opts.URL, resizes it and saves it as a JPEG.
// It skips the download if the file already exists and Force is false.
func LocalizeCover(ctx context.Context, opts CoverOptions) (*CoverResult, error) {
	if !IsRemoteURL(opts.URL) {
		return nil, nil
	}
	if opts.ID == "" {
		return nil, fmt.Errorf("cover id required")
	}

	result := &CoverResult{LocalPath: CoverPath(opts.Dir, opts.ID)}
	if FileExists(result.LocalPath) && !opts.Force {
		slog.Debug("Cover already exists, skipping download", "path", result.LocalPath)
		return result, nil
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultCoverWidth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}
	if err := imaging.Save(img, result.LocalPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to write cover file: %w", err)
	}

	slog.Info("Downloaded cover", "path", result.LocalPath)
	result.Downloaded = true
	return result, nil
}
