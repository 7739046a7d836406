package analysiscache

import (
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"subsonar/internal/logging"
)

// Entry kinds used by the search session. Removal of an indexed path evicts
// every kind for that path.
const (
	KindSilences    = "silences"
	KindVolumeStats = "volume_stats"
)

// Key identifies one cached analysis result.
type Key struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Cache is a directory of content-addressed analysis results.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// Open ensures the cache directory exists and returns a handle. Idempotent.
func Open(dir string, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "analysiscache"),
	}, nil
}

// Dir returns the cache storage directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) entryPath(key Key) (string, error) {
	payload, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("serialize cache key: %w", err)
	}
	sum := sha1.Sum(payload)
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json.gz"), nil
}

// Get decodes the cached value for key into out. It returns false and leaves
// out untouched when no entry exists.
func (c *Cache) Get(key Key, out any) (bool, error) {
	path, err := c.entryPath(key)
	if err != nil {
		return false, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open cache entry: %w", err)
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return false, fmt.Errorf("decompress cache entry: %w", err)
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return true, nil
}

// GetOrCompute decodes the cached value for key into out, invoking compute
// and durably storing its result first on a miss. compute runs at most once
// per call and its result is cached before being returned.
func (c *Cache) GetOrCompute(key Key, out any, compute func() (any, error)) error {
	hit, err := c.Get(key, out)
	if err != nil {
		return err
	}
	if hit {
		return nil
	}

	value, err := compute()
	if err != nil {
		return err
	}
	if err := c.Set(key, value); err != nil {
		return err
	}

	c.logger.Debug("cached analysis result",
		logging.String(logging.FieldPath, key.Path),
		logging.String("kind", key.Kind))

	// Round-trip through the stored encoding so hits and misses observe
	// identical values.
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize cache value: %w", err)
	}
	return json.Unmarshal(payload, out)
}

// Set serializes value, compresses it, and writes it to the entry derived
// from key. The write is a whole-file replace via temp file and rename so
// concurrent readers never observe a partial entry.
func (c *Cache) Set(key Key, value any) error {
	path, err := c.entryPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	writer := gzip.NewWriter(tmp)
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("compress cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Pop decodes the cached value for key into out like Get, then deletes the
// underlying entry. A missing entry is not an error.
func (c *Cache) Pop(key Key, out any) (bool, error) {
	hit, err := c.Get(key, out)
	if err != nil {
		return false, err
	}

	path, pathErr := c.entryPath(key)
	if pathErr != nil {
		return hit, pathErr
	}
	if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
		return hit, fmt.Errorf("remove cache entry: %w", removeErr)
	}
	return hit, nil
}

// Evict removes every known entry kind for the given media path. Used when a
// path leaves the index; entry lifetime is tied to index membership.
func (c *Cache) Evict(path string) error {
	for _, kind := range []string{KindSilences, KindVolumeStats} {
		var discard json.RawMessage
		if _, err := c.Pop(Key{Path: path, Kind: kind}, &discard); err != nil {
			return err
		}
	}
	return nil
}
