package bundle

import (
	"errors"
	"fmt"
)

var (
	ErrShortHeader       = errors.New("file smaller than bundle header")
	ErrBadMagic          = errors.New("bad bundle magic")
	ErrShortTable        = errors.New("file smaller than entry table")
	ErrPayloadOutOfRange = errors.New("entry payload runs past end of bundle")
	ErrMetaMismatch      = errors.New("duplicate meta record differs from entry table")
	ErrZBlockSum         = errors.New("zblock sizes do not add up to encoded size")
	ErrSizeMismatch      = errors.New("decoded length differs from entry table")
)

// OpenError is returned when a bundle cannot be opened or its header and
// entry table cannot be trusted. Nothing has been extracted at that point.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("opening bundle: %v", e.Err)
	}
	return fmt.Sprintf("opening bundle %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
