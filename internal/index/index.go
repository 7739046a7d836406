package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"subsonar/internal/analysiscache"
	"subsonar/internal/logging"
)

const (
	databaseFile = "index.db"
	sidecarFile  = "subsonar-config.json"
	lockFile     = "subsonar.lock"
	cacheSubdir  = "cache"
)

// sidecar is the durable per-index configuration stored next to the engine's
// files. The relative policy is a write-once decision per index instance.
type sidecar struct {
	Relative bool `json:"relative"`
}

// Index is a persistent full-text index over subtitle events.
type Index struct {
	dir      string
	db       *sql.DB
	relative bool
	lock     *flock.Flock
	cache    *analysiscache.Cache
	logger   *slog.Logger
}

// Create initializes a new, empty persistent index at dir and persists the
// relative-path policy as part of its durable configuration.
func Create(dir string, relative bool, logger *slog.Logger) (*Index, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve index dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	payload, err := json.Marshal(sidecar{Relative: relative})
	if err != nil {
		return nil, fmt.Errorf("serialize index config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sidecarFile), payload, 0o644); err != nil {
		return nil, fmt.Errorf("write index config: %w", err)
	}

	ix, err := newIndex(dir, relative, logger)
	if err != nil {
		return nil, err
	}
	if err := ix.createSchema(context.Background()); err != nil {
		_ = ix.Close()
		return nil, err
	}
	return ix, nil
}

// Open loads an existing index and its configuration. It fails with
// ErrNotFound when no index exists at dir and ErrCorrupt when the
// configuration or index structure is unreadable.
func Open(dir string, logger *slog.Logger) (*Index, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve index dir: %w", err)
	}

	payload, err := os.ReadFile(filepath.Join(dir, sidecarFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read index config: %w", err)
	}
	var cfg sidecar
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse index config: %w", ErrCorrupt, err)
	}

	if _, err := os.Stat(filepath.Join(dir, databaseFile)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("inspect index database: %w", err)
	}

	ix, err := newIndex(dir, cfg.Relative, logger)
	if err != nil {
		return nil, err
	}
	if err := ix.verifySchema(context.Background()); err != nil {
		_ = ix.Close()
		return nil, err
	}
	return ix, nil
}

func newIndex(dir string, relative bool, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "index")

	db, err := sql.Open("sqlite", filepath.Join(dir, databaseFile))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache, err := analysiscache.Open(filepath.Join(dir, cacheSubdir), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Index{
		dir:      dir,
		db:       db,
		relative: relative,
		lock:     flock.New(filepath.Join(dir, lockFile)),
		cache:    cache,
		logger:   logger,
	}, nil
}

// Dir returns the index storage directory.
func (ix *Index) Dir() string { return ix.dir }

// Relative reports the index's stored-path policy.
func (ix *Index) Relative() bool { return ix.relative }

// Cache returns the analysis cache co-located with this index.
func (ix *Index) Cache() *analysiscache.Cache { return ix.cache }

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// acquireWriteLock serializes mutations across processes. Readers are not
// blocked; concurrent writers fail fast with ErrLocked.
func (ix *Index) acquireWriteLock() (func(), error) {
	ok, err := ix.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := ix.lock.Unlock(); err != nil {
			ix.logger.Warn("failed to release index lock", logging.Error(err))
		}
	}, nil
}

// storedPath resolves how path is recorded in the index: relative to the
// index directory or canonicalized absolute, per policy or override.
func (ix *Index) storedPath(path string, override *bool) (string, error) {
	relative := ix.relative
	if override != nil {
		relative = *override
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	if !relative {
		return filepath.Clean(abs), nil
	}
	rel, err := filepath.Rel(ix.dir, abs)
	if err != nil {
		return "", fmt.Errorf("relativize path %q: %w", path, err)
	}
	return filepath.Clean(rel), nil
}

// resolvePath reconstitutes a stored path into one usable for file access.
func (ix *Index) resolvePath(stored string) string {
	if filepath.IsAbs(stored) {
		return filepath.Clean(stored)
	}
	return filepath.Clean(filepath.Join(ix.dir, stored))
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
