package extract

import (
	"errors"
	"fmt"

	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/lzss"
)

// ErrFilesystem marks sink errors about the output location rather than
// the write itself.
var ErrFilesystem = errors.New("cannot create output location")

// Kind classifies a per-entry failure.
type Kind int

const (
	KindFormat Kind = iota
	KindIO
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindIO:
		return "io"
	case KindFilesystem:
		return "filesystem"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// EntryError is a failure while extracting one entry.
type EntryError struct {
	Index int
	Name  string
	Kind  Kind
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s error in entry %d %q: %v", e.Kind, e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// classify picks the Kind for an error coming out of the catalog, the
// decoder or a sink.
func classify(err error) Kind {
	var fe *lzss.FormatError
	switch {
	case errors.As(err, &fe),
		errors.Is(err, bundle.ErrPayloadOutOfRange),
		errors.Is(err, bundle.ErrMetaMismatch),
		errors.Is(err, bundle.ErrZBlockSum),
		errors.Is(err, bundle.ErrSizeMismatch):
		return KindFormat
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	default:
		return KindIO
	}
}
