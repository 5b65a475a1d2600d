package extract_test

// blockWriter lays out tokens the way the decoder reads them: a new marker
// word is reserved as soon as the current one has 16 bits.
type blockWriter struct {
	out    []byte
	marker int
	bits   int
}

func (w *blockWriter) bit(b byte) {
	if w.out == nil {
		w.out = []byte{0, 0}
	}
	w.out[w.marker+w.bits/8] |= b << (w.bits % 8)
	w.bits++
	if w.bits == 16 {
		w.marker = len(w.out)
		w.out = append(w.out, 0, 0)
		w.bits = 0
	}
}

func (w *blockWriter) literal(c byte) {
	w.bit(1)
	w.out = append(w.out, c)
}

// copyBack emits a long copy; distance 1..256, length 2..256.
func (w *blockWriter) copyBack(distance, length int) {
	w.bit(0)
	w.bit(1)
	off := uint32(-distance)
	lo := byte(off)
	hi := byte(off>>4) & 0xF0
	if length >= 4 && length <= 18 {
		w.out = append(w.out, lo, hi|byte(length-3))
		return
	}
	w.out = append(w.out, lo, hi, byte(length-1))
}

func (w *blockWriter) end() {
	w.bit(0)
	w.bit(1)
	w.out = append(w.out, 0, 0, 0)
}

func (w *blockWriter) bytes() []byte {
	return w.out
}
