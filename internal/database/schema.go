package database

import (
	"context"
	"fmt"
)

// manifestDDL creates one row per extraction run and one row per written entry.
var manifestDDL = []string{
	`CREATE TABLE IF NOT EXISTS bundles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		entry_count INTEGER NOT NULL,
		started_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		bundle_id INTEGER NOT NULL REFERENCES bundles(id) ON DELETE CASCADE,
		entry_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		location TEXT NOT NULL,
		kind TEXT NOT NULL,
		decoded_size INTEGER NOT NULL,
		encoded_size INTEGER NOT NULL,
		zblocks INTEGER NOT NULL,
		xxhash TEXT NOT NULL,
		PRIMARY KEY (bundle_id, entry_index)
	)`,
	`CREATE INDEX IF NOT EXISTS entries_path ON entries(path)`,
}

// createSchema creates the manifest tables in a single transaction
func (d *Database) createSchema(ctx context.Context) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range manifestDDL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating manifest schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing manifest schema: %w", err)
	}

	return nil
}

// HasManifest reports whether any bundle has been recorded yet
func (d *Database) HasManifest(ctx context.Context) (bool, error) {
	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM bundles`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting recorded bundles: %w", err)
	}
	return count > 0, nil
}
