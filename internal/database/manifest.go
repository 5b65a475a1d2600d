package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/extract"
	"github.com/jchantrell/unzap/internal/utils"
)

// EntryRecord is one extracted entry as stored in the manifest
type EntryRecord struct {
	Index       int
	Name        string // name as stored in the bundle
	Path        string // canonical lowercase slash path
	Location    string // where the sink wrote it
	Kind        string
	DecodedSize uint32
	EncodedSize uint32
	ZBlocks     int
	Hash        uint64 // xxhash64 of the extracted bytes
}

// ManifestOptions configures manifest recording
type ManifestOptions struct {
	// BatchSize determines how many entries are written per transaction
	BatchSize int
}

// DefaultManifestOptions returns sensible defaults for manifest recording
func DefaultManifestOptions() *ManifestOptions {
	return &ManifestOptions{
		BatchSize: 500,
	}
}

// Manifest records the entries of one extraction run
type Manifest struct {
	db        *Database
	bundleID  int64
	batchSize int
	pending   []EntryRecord
}

// NewManifest registers a run over cat, read from bundlePath
func NewManifest(ctx context.Context, db *Database, bundlePath string, cat *bundle.Catalog, options *ManifestOptions) (*Manifest, error) {
	if options == nil {
		options = DefaultManifestOptions()
	}
	if options.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", options.BatchSize)
	}

	result, err := db.Exec(ctx,
		`INSERT INTO bundles (path, size, entry_count, started_at) VALUES (?, ?, ?, ?)`,
		bundlePath, cat.Size(), cat.Len(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("recording bundle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading bundle id: %w", err)
	}

	slog.Debug("Manifest run registered", "database", db.Path(), "bundle_id", id)

	return &Manifest{
		db:        db,
		bundleID:  id,
		batchSize: options.BatchSize,
	}, nil
}

// LatestManifest opens the most recent run recorded in db
func LatestManifest(ctx context.Context, db *Database) (*Manifest, error) {
	var id int64
	err := db.QueryRow(ctx, `SELECT id FROM bundles ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no extraction runs recorded in %s", db.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest run: %w", err)
	}

	return &Manifest{
		db:        db,
		bundleID:  id,
		batchSize: DefaultManifestOptions().BatchSize,
	}, nil
}

// BundleID returns the id of the run in the bundles table
func (m *Manifest) BundleID() int64 {
	return m.bundleID
}

// Record queues rec and writes the queue once it reaches the batch size
func (m *Manifest) Record(ctx context.Context, rec EntryRecord) error {
	m.pending = append(m.pending, rec)
	if len(m.pending) >= m.batchSize {
		return m.Flush(ctx)
	}
	return nil
}

// Flush writes all queued records in one transaction
func (m *Manifest) Flush(ctx context.Context) error {
	if len(m.pending) == 0 {
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO entries
		(bundle_id, entry_index, name, path, location, kind, decoded_size, encoded_size, zblocks, xxhash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range m.pending {
		if _, err := stmt.ExecContext(ctx,
			m.bundleID, rec.Index, rec.Name, rec.Path, rec.Location, rec.Kind,
			rec.DecodedSize, rec.EncodedSize, rec.ZBlocks, fmt.Sprintf("%016x", rec.Hash)); err != nil {
			return fmt.Errorf("inserting entry %d: %w", rec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}

	slog.Debug("Manifest batch written", "entries", len(m.pending))
	m.pending = m.pending[:0]

	return nil
}

// Entries returns the records of this run in index order
func (m *Manifest) Entries(ctx context.Context) ([]EntryRecord, error) {
	rows, err := m.db.Query(ctx, `SELECT entry_index, name, path, location, kind, decoded_size, encoded_size, zblocks, xxhash
		FROM entries WHERE bundle_id = ? ORDER BY entry_index`, m.bundleID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var records []EntryRecord
	for rows.Next() {
		var rec EntryRecord
		var hash string
		if err := rows.Scan(&rec.Index, &rec.Name, &rec.Path, &rec.Location, &rec.Kind,
			&rec.DecodedSize, &rec.EncodedSize, &rec.ZBlocks, &hash); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if _, err := fmt.Sscanf(hash, "%x", &rec.Hash); err != nil {
			return nil, fmt.Errorf("parsing hash of entry %d: %w", rec.Index, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return records, nil
}

// Sink wraps inner so that every successful write is recorded
func (m *Manifest) Sink(inner extract.Sink) *ManifestSink {
	return &ManifestSink{inner: inner, manifest: m}
}

// ManifestSink is an extract.Sink that records what its inner sink wrote
type ManifestSink struct {
	inner    extract.Sink
	manifest *Manifest
}

func (s *ManifestSink) Write(ctx context.Context, entry bundle.Entry, path string, data []byte) (string, error) {
	location, err := s.inner.Write(ctx, entry, path, data)
	if err != nil {
		return "", err
	}

	rec := EntryRecord{
		Index:       entry.Index,
		Name:        entry.Name,
		Path:        utils.CanonicalName(entry.Name),
		Location:    location,
		Kind:        entry.Kind(),
		DecodedSize: entry.DecodedSize,
		EncodedSize: entry.EncodedSize,
		ZBlocks:     len(entry.ZBlocks),
		Hash:        xxhash.Sum64(data),
	}

	if err := s.manifest.Record(ctx, rec); err != nil {
		return "", fmt.Errorf("recording %s in manifest: %w", path, err)
	}

	return location, nil
}
