package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/bundle/bundletest"
	"github.com/jchantrell/unzap/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(context.Background(), DefaultDatabaseOptions(filepath.Join(t.TempDir(), "sub", "manifest.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabaseCreatesSchema(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()

	has, err := db.HasManifest(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	var tables int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('bundles', 'entries')`).Scan(&tables))
	assert.Equal(t, 2, tables)

	_, err = NewDatabase(ctx, nil)
	assert.Error(t, err)
	_, err = NewDatabase(ctx, &DatabaseOptions{})
	assert.Error(t, err)
}

func TestBuildConnectionString(t *testing.T) {
	dsn := buildConnectionString(DefaultDatabaseOptions("x.db"))
	assert.Equal(t, "file:x.db?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=10000&_synchronous=NORMAL", dsn)
}

func TestManifestSinkRecordsExtraction(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	data := bundletest.Build(
		bundletest.Empty("Data/None"),
		bundletest.Raw(`Data\One.TXT`, []byte("one"), 0),
		bundletest.Raw(`Data\Two.TXT`, []byte("two!"), 3),
	)
	cat, err := bundle.New(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	m, err := NewManifest(ctx, db, "test.zap", cat, &ManifestOptions{BatchSize: 1})
	require.NoError(t, err)

	var out bytes.Buffer
	x, err := extract.New(cat, m.Sink(&extract.WriterSink{W: &out}))
	require.NoError(t, err)

	_, err = x.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Flush(ctx))

	records, err := m.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Index)
	assert.Equal(t, "data/one.txt", records[0].Path)
	assert.Equal(t, `Data\One.TXT`, records[0].Name)
	assert.Equal(t, "raw", records[0].Kind)
	assert.Equal(t, "-", records[0].Location)
	assert.Equal(t, xxhash.Sum64String("one"), records[0].Hash)
	assert.Equal(t, xxhash.Sum64String("two!"), records[1].Hash)

	has, err := db.HasManifest(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestManifestBatching(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	data := bundletest.Build(bundletest.Raw("a", []byte("a"), 0))
	cat, err := bundle.New(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	_, err = NewManifest(ctx, db, "x", cat, &ManifestOptions{BatchSize: 0})
	assert.Error(t, err)

	m, err := NewManifest(ctx, db, "x", cat, nil)
	require.NoError(t, err)

	require.NoError(t, m.Record(ctx, EntryRecord{Index: 0, Name: "a", Path: "a", Location: "-", Kind: "raw"}))

	records, err := m.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "records stay queued until the batch is full")

	require.NoError(t, m.Flush(ctx))
	records, err = m.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLatestManifest(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	_, err := LatestManifest(ctx, db)
	assert.Error(t, err)

	data := bundletest.Build(bundletest.Raw("a.txt", []byte("a"), 0))
	cat, err := bundle.New(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	first, err := NewManifest(ctx, db, "first.zap", cat, nil)
	require.NoError(t, err)
	second, err := NewManifest(ctx, db, "second.zap", cat, nil)
	require.NoError(t, err)
	require.NotEqual(t, first.BundleID(), second.BundleID())

	latest, err := LatestManifest(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, second.BundleID(), latest.BundleID())
}
