// Package imagecache downloads remote images and keeps them on disk for later runs.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/jmylchreest/prevalent/internal/security"
	httputil "github.com/jmylchreest/prevalent/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to ~/.cache/prevalent/images
	CacheDir string

	// AllowOverwrite forces a fresh download even when a cached copy exists.
	AllowOverwrite bool

	// FetchOpts is passed through to the HTTP fetch on a cache miss.
	FetchOpts httputil.FetchOptions
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "prevalent", "images"), nil
	}
	return filepath.Join(cacheDir, "prevalent", "images"), nil
}

// Filename returns the deterministic cache filename for a URL:
// the first 16 bytes of its SHA256 in hex plus the URL's extension.
func Filename(url string) string {
	hash := sha256.Sum256([]byte(url))
	hashStr := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return hashStr + strings.ToLower(ext)
}

// DownloadAndCache returns the local path of a cached copy of url, downloading it first on a miss.
// Writes go through a temporary file and rename so concurrent callers never see a partial image.
func DownloadAndCache(ctx context.Context, url string, opts CacheOptions) (string, error) {
	if err := security.ValidateImageURL(url); err != nil {
		return "", err
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = defaultDir
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, Filename(url))
	if !opts.AllowOverwrite {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, opts.FetchOpts)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	tmp, err := os.CreateTemp(cacheDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := multierr.Combine(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}

	if err := os.Rename(tmpPath, cachedPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to store cached image: %w", err)
	}

	return cachedPath, nil
}
