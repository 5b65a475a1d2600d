package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jchantrell/unzap/internal/bundle"
)

// Sink receives the decoded bytes of each entry.
//
// data is only valid for the duration of the call; the extractor reuses
// the buffer for the next entry. Write returns an identifier of where the
// bytes went.
type Sink interface {
	Write(ctx context.Context, entry bundle.Entry, path string, data []byte) (string, error)
}

// DirSink writes entries as files below Root, creating directories as
// needed.
type DirSink struct {
	Root string
}

// NewDirSink creates a sink writing below root.
func NewDirSink(root string) *DirSink {
	return &DirSink{Root: root}
}

func (s *DirSink) Write(ctx context.Context, entry bundle.Entry, path string, data []byte) (string, error) {
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("%w: %q is not inside the output directory", ErrFilesystem, path)
	}

	outputPath := filepath.Join(s.Root, path)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", outputPath, err)
	}

	return outputPath, nil
}

// WriterSink writes the bytes of every entry to W back to back.
type WriterSink struct {
	W io.Writer
}

func (s *WriterSink) Write(ctx context.Context, entry bundle.Entry, path string, data []byte) (string, error) {
	if _, err := s.W.Write(data); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return "-", nil
}
