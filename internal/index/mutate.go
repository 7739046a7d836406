package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"subsonar/internal/logging"
	"subsonar/internal/media"
)

// Add indexes the subtitle events of path. Directories are walked in
// lexicographic order and only leaf files produce documents. All events from
// one file commit atomically; a file whose extraction fails is reported and
// skipped without aborting the batch.
func (ix *Index) Add(ctx context.Context, extractor Extractor, path string, opts AddOptions) error {
	unlock, err := ix.acquireWriteLock()
	if err != nil {
		return err
	}
	defer unlock()

	return ix.addPath(ctx, extractor, path, opts)
}

func (ix *Index) addPath(ctx context.Context, extractor Extractor, path string, opts AddOptions) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inspect %q: %w", path, err)
	}
	if !info.IsDir() {
		return ix.addFile(ctx, extractor, path, opts)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", path, err)
	}
	for _, entry := range entries {
		if err := ix.addPath(ctx, extractor, filepath.Join(path, entry.Name()), opts); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) addFile(ctx context.Context, extractor Extractor, path string, opts AddOptions) error {
	stored, err := ix.storedPath(path, opts.Relative)
	if err != nil {
		return err
	}

	events, err := extractor.ExtractSubtitles(ctx, path)
	if err != nil {
		if errors.Is(err, media.ErrExtraction) {
			ix.logger.Warn("skipping file without usable subtitles",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			return nil
		}
		return err
	}

	err = retryOnBusy(ctx, func() error {
		tx, err := ix.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO subtitle_events (path, start_ms, end_ms, content) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		indexed := 0
		for _, event := range events {
			if event.Comment {
				continue
			}
			if _, err := stmt.ExecContext(ctx, stored, event.StartMs, event.EndMs, event.Text); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
			indexed++
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit events: %w", err)
		}

		ix.logger.Debug("indexed file",
			logging.String(logging.FieldPath, stored),
			logging.Int("events", indexed))
		if opts.OnIndexed != nil {
			opts.OnIndexed(path, stored, indexed)
		}
		return nil
	})
	return err
}

// Remove deletes all documents whose stored path matches path, recursing
// into directories like Add, and evicts the path's analysis cache entries.
// Removing a path with no indexed documents is a no-op.
func (ix *Index) Remove(ctx context.Context, path string, opts RemoveOptions) error {
	unlock, err := ix.acquireWriteLock()
	if err != nil {
		return err
	}
	defer unlock()

	return ix.removePath(ctx, path, opts)
}

func (ix *Index) removePath(ctx context.Context, path string, opts RemoveOptions) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read directory %q: %w", path, err)
		}
		for _, entry := range entries {
			if err := ix.removePath(ctx, filepath.Join(path, entry.Name()), opts); err != nil {
				return err
			}
		}
		return nil
	}
	// A path that no longer exists on disk can still be indexed; fall
	// through and remove it by its resolved stored form.
	return ix.removeFile(ctx, path, opts)
}

func (ix *Index) removeFile(ctx context.Context, path string, opts RemoveOptions) error {
	stored, err := ix.storedPath(path, opts.Relative)
	if err != nil {
		return err
	}

	var deleted int64
	err = retryOnBusy(ctx, func() error {
		res, err := ix.db.ExecContext(ctx, "DELETE FROM subtitle_events WHERE path = ?", stored)
		if err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}

	// Cache entries live only as long as their path is indexed.
	if err := ix.cache.Evict(ix.resolvePath(stored)); err != nil {
		return err
	}

	ix.logger.Debug("removed file",
		logging.String(logging.FieldPath, stored),
		logging.Int64("events", deleted))
	if opts.OnRemoved != nil {
		opts.OnRemoved(path, stored, int(deleted))
	}
	return nil
}
