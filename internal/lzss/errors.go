package lzss

import (
	"errors"
	"fmt"
)

// Decoder errors. All of them are reported wrapped in a *FormatError.
var (
	ErrInvalidBackReference = errors.New("back-reference before start of output")
	ErrOutputOverflow       = errors.New("decoded output exceeds block limit")
	ErrSourceTruncated      = errors.New("source ended before end-of-stream marker")
	ErrBlockSizeMismatch    = errors.New("zblock consumed size does not match its listed size")
)

// FormatError describes where in a compressed stream decoding failed.
type FormatError struct {
	Block  int // zblock index, -1 for a single DecodeBlock call
	Source int // source offset within the block
	Output int // write position in the destination buffer
	Err    error
}

func (e *FormatError) Error() string {
	if e.Block >= 0 {
		return fmt.Sprintf("lzss: zblock %d at source %d, output %d: %v", e.Block, e.Source, e.Output, e.Err)
	}
	return fmt.Sprintf("lzss: at source %d, output %d: %v", e.Source, e.Output, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
