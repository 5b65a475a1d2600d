package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestPath(t *testing.T) {
	dir := t.TempDir()
	c := At(dir)

	assert.Equal(t, dir, c.GetCacheDir())
	assert.Equal(t, filepath.Join(dir, "manifest.db"), c.GetManifestPath())
	assert.Equal(t, filepath.Join(dir, "manifest.db"), c.ResolveManifest(""))
	assert.Equal(t, "custom.db", c.ResolveManifest("custom.db"))
}

func TestEnsureDir(t *testing.T) {
	c := At(t.TempDir())
	dir := filepath.Join(c.GetCacheDir(), "a", "b")

	assert.False(t, c.FileExists(dir))
	require.NoError(t, c.EnsureDir(dir))
	assert.True(t, c.FileExists(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0644))
	assert.True(t, c.FileExists(filepath.Join(dir, "f")))
}

func TestCacheManagerDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".unzap"), CacheManager().GetCacheDir())
}
