package lzss

import (
	"fmt"
	"log/slog"
)

// DecodeChain decodes an entry made of consecutive zblocks.
//
// zblocks lists the compressed length of each block in src. Every block is
// written directly after the previous one in dst, and dst is never reset,
// so later blocks may copy from bytes produced by earlier ones. It returns
// the total number of bytes written.
func (d *Decoder) DecodeChain(dst []byte, src []byte, zblocks []uint32) (int, error) {
	var off, w int

	for i, z := range zblocks {
		end := off + int(z)
		if end > len(src) {
			return w, &FormatError{Block: i, Source: 0, Output: w, Err: ErrSourceTruncated}
		}

		res, err := d.decode(dst, w, src[off:end])
		if err != nil {
			return w + res.Produced, &FormatError{Block: i, Source: res.Consumed, Output: w + res.Produced, Err: err}
		}

		if res.Consumed != int(z) {
			return w + res.Produced, &FormatError{Block: i, Source: res.Consumed, Output: w + res.Produced, Err: ErrBlockSizeMismatch}
		}

		slog.Debug("Decoded zblock", "block", i, "consumed", res.Consumed, "produced", res.Produced)

		off = end
		w += res.Produced
	}

	return w, nil
}

// CheckChainSize rejects a decoded size that n zblocks cannot produce
// under the block limit, so callers can refuse it before allocating.
func (d *Decoder) CheckChainSize(decoded uint64, n int) error {
	limit := d.blockLimit()
	if limit < 0 {
		return nil
	}
	if decoded > uint64(n)*uint64(limit) {
		return &FormatError{
			Block: -1,
			Err:   fmt.Errorf("%w: %d bytes claimed from %d zblocks of at most %d", ErrOutputOverflow, decoded, n, limit),
		}
	}
	return nil
}

// DecodeChain decodes zblocks with the default block limit.
func DecodeChain(dst []byte, src []byte, zblocks []uint32) (int, error) {
	var d Decoder
	return d.DecodeChain(dst, src, zblocks)
}
