package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressDisabled(t *testing.T) {
	p := newProgress(&bytes.Buffer{}, 3, false)
	assert.False(t, p.Enabled())

	p.Start("a")
	p.Advance(10)
	p.Finish()
	assert.Zero(t, p.bytes.Load())
}

func TestProgressFinishesEarly(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, 5, true)
	assert.True(t, p.Enabled())

	p.Start("data/first.txt")
	p.Advance(100)
	p.Start("data/second.txt")
	p.Advance(28)

	// two of five entries, as after an aborted run
	p.Finish()
	assert.Equal(t, int64(128), p.bytes.Load())
	assert.NotEmpty(t, buf.String())
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "short", truncateLeft("short", 8))
	assert.Equal(t, "..e/file.txt", truncateLeft("some/long/path/file.txt", 12))
}
