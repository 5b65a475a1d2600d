package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`DATA\Sub\File.TXT`, "data/sub/file.txt"},
		{"data/sub/file.txt", "data/sub/file.txt"},
		{`Mixed/Seps\In\Name.Dat`, "mixed/seps/in/name.dat"},
		{"", ""},
		{"caf\xc3\x89.bin", "caf\xc3\x89.bin"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalName(tt.in), tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	got := NormalizeName(`DATA\Sub\File.TXT`)
	assert.Equal(t, filepath.Join("data", "sub", "file.txt"), got)
	assert.Len(t, got, len(`DATA\Sub\File.TXT`))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "0", Number(0))
	assert.Equal(t, "999", Number(999))
	assert.Equal(t, "1,234,567", Number(1234567))
	assert.Equal(t, "-1,000", Number(-1000))
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "512B", Bytes(512))
	assert.Equal(t, "1.5KiB", Bytes(1536))
	assert.Equal(t, "2.00MiB", Bytes(2*1024*1024))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "0s", Duration(500*time.Millisecond))
	assert.Equal(t, "5.2s", Duration(5200*time.Millisecond))
	assert.Equal(t, "2h15m", Duration(2*time.Hour+15*time.Minute))
}
