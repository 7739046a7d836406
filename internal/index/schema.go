package index

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing indexes must be recreated after a bump.
const schemaVersion = 1

func (ix *Index) createSchema(ctx context.Context) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (ix *Index) verifySchema(ctx context.Context) error {
	var tableExists int
	err := ix.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("%w: check schema_version table: %w", ErrCorrupt, err)
	}
	if tableExists == 0 {
		return fmt.Errorf("%w: schema_version table missing", ErrCorrupt)
	}

	var version int
	err = ix.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("%w: read schema version: %w", ErrCorrupt, err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has schema version %d, expected %d", ErrCorrupt, version, schemaVersion)
	}
	return nil
}
