// Package feedcache persists a normalized gtfsmodel.Model to disk so a
// process restart (or a second city sharing the same feed bytes) can
// skip re-parsing and re-running the normalization pipeline of
// spec.md §4.3 entirely. Grounded on
// drobiAlex-wabus-backend/pkg/gtfs/parse_cache.go: gob-encoded,
// gzip-compressed, keyed by a SHA-256 fingerprint of the source feed
// bytes, with a write-to-temp-then-rename for atomicity.
package feedcache

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antigravity/time2reach/internal/gtfsmodel"
)

// Dir returns the configured cache directory, defaulting to a
// subdirectory of the OS temp dir.
func Dir() string {
	dir := os.Getenv("TIME2REACH_FEED_CACHE_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "time2reach-gtfs-cache")
	}
	return dir
}

// Fingerprint returns the cache key for a feed's raw bytes. Schema
// changes to gtfsmodel.Model invalidate every existing cache entry
// implicitly: a stale gob blob either fails to decode or, if it
// happens to decode, is rejected by Load's completeness check.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cachePath(dir, fingerprint string) string {
	return filepath.Join(dir, fmt.Sprintf("gtfs_model_%s.gob.gz", fingerprint))
}

// Load reads the cached Model for fingerprint, if present.
func Load(dir, fingerprint string) (*gtfsmodel.Model, error) {
	path := cachePath(dir, fingerprint)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var m gtfsmodel.Model
	if err := gob.NewDecoder(zr).Decode(&m); err != nil {
		return nil, err
	}
	if m.Stops == nil || m.Routes == nil {
		return nil, fmt.Errorf("feedcache: cached model at %s is incomplete", path)
	}
	return &m, nil
}

// Save writes m to the cache under fingerprint, replacing any existing
// entry atomically via a temp file plus rename.
func Save(dir, fingerprint string, m *gtfsmodel.Model) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := cachePath(dir, fingerprint)
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}

	zw, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		return "", err
	}

	encErr := gob.NewEncoder(zw).Encode(m)
	closeErr := zw.Close()
	fileCloseErr := f.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return "", encErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", closeErr
	}
	if fileCloseErr != nil {
		os.Remove(tmpPath)
		return "", fileCloseErr
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return path, nil
}
