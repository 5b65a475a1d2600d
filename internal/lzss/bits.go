package lzss

// markerBits is the number of control bits held in one marker word.
const markerBits = 16

// bitReader peels control bits least-significant-first from 16-bit
// little-endian marker words that are interleaved with raw bytes in src.
type bitReader struct {
	src       []byte
	pos       int
	window    uint16
	count     int
	truncated bool
}

func newBitReader(src []byte) *bitReader {
	r := &bitReader{src: src}
	r.refill()
	return r
}

// refill loads the next marker word at pos. The cursor always moves by two
// bytes, even when the source is short; the truncation only becomes an error
// if a bit of that window is actually consumed.
func (r *bitReader) refill() {
	r.count = markerBits
	r.truncated = r.pos+2 > len(r.src)
	r.window = 0
	if !r.truncated {
		r.window = uint16(r.src[r.pos]) | uint16(r.src[r.pos+1])<<8
	}
	r.pos += 2
}

func (r *bitReader) bit() (uint32, error) {
	if r.truncated {
		return 0, ErrSourceTruncated
	}

	b := uint32(r.window & 1)
	r.window >>= 1
	r.count--

	if r.count == 0 {
		r.refill()
	}

	return b, nil
}

func (r *bitReader) byte() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, ErrSourceTruncated
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}
