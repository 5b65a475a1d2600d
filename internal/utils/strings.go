package utils

import (
	"path/filepath"
	"strings"
)

// CanonicalName converts a bundle entry name to a lowercase, slash
// separated path. Names in bundles vary in case and use either separator.
// Only ASCII letters are folded.
func CanonicalName(name string) string {
	if name == "" {
		return name
	}

	var result strings.Builder
	result.Grow(len(name))

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '\\' || c == '/':
			result.WriteByte('/')
		case c >= 'A' && c <= 'Z':
			result.WriteByte(c | 0x20)
		default:
			result.WriteByte(c)
		}
	}

	return result.String()
}

// NormalizeName is CanonicalName with the platform path separator.
// For example "DATA\Sub\File.TXT" becomes "data/sub/file.txt" on Unix.
func NormalizeName(name string) string {
	return filepath.FromSlash(CanonicalName(name))
}
