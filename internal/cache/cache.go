package cache

import (
	"os"
	"path/filepath"
)

// Cache locates unzap's per-user data directory
type Cache struct {
	root string
}

// CacheManager creates a cache rooted in the user's home directory
func CacheManager() *Cache {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return &Cache{root: filepath.Join(".", ".unzap")}
	}
	return &Cache{root: filepath.Join(homeDir, ".unzap")}
}

// At creates a cache rooted at dir
func At(dir string) *Cache {
	return &Cache{root: dir}
}

// GetCacheDir returns the data directory
func (m *Cache) GetCacheDir() string {
	return m.root
}

// GetManifestPath returns the default manifest database path
func (m *Cache) GetManifestPath() string {
	return filepath.Join(m.root, "manifest.db")
}

// ResolveManifest returns configured if set, the default manifest path otherwise
func (m *Cache) ResolveManifest(configured string) string {
	if configured != "" {
		return configured
	}
	return m.GetManifestPath()
}

// EnsureDir creates a directory and all parent directories
func (m *Cache) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a file exists
func (m *Cache) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
