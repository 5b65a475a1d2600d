package lzss

// MaxBlockSize is the largest output a single decode call may produce.
const MaxBlockSize = 0xFFFF

// Result reports what one decode call did.
type Result struct {
	Consumed int // source bytes read, end-of-stream token included
	Produced int // output bytes written
}

// Decoder applies compressed blocks to a caller-owned output buffer.
// The zero value uses MaxBlockSize.
type Decoder struct {
	// MaxBlockSize bounds the output of one DecodeBlock call. Zero means
	// MaxBlockSize; a negative value disables the bound.
	MaxBlockSize int
}

// NewDecoder returns a decoder limiting each block to maxBlock bytes.
func NewDecoder(maxBlock int) *Decoder {
	return &Decoder{MaxBlockSize: maxBlock}
}

func (d *Decoder) blockLimit() int {
	if d == nil || d.MaxBlockSize == 0 {
		return MaxBlockSize
	}
	return d.MaxBlockSize
}

// DecodeBlock decodes one block from src into dst starting at dst[pos].
//
// Back-references are resolved against everything in dst before the write
// position, so bytes written by earlier calls on the same dst are valid
// targets. Decoding stops at the end-of-stream token; len(dst) bounds the
// output as well as the per-block limit.
func (d *Decoder) DecodeBlock(dst []byte, pos int, src []byte) (Result, error) {
	res, err := d.decode(dst, pos, src)
	if err != nil {
		return res, &FormatError{Block: -1, Source: res.Consumed, Output: pos + res.Produced, Err: err}
	}
	return res, nil
}

func (d *Decoder) decode(dst []byte, pos int, src []byte) (Result, error) {
	if pos < 0 || pos > len(dst) {
		return Result{}, ErrOutputOverflow
	}

	limit := len(dst)
	if n := d.blockLimit(); n >= 0 && pos+n < limit {
		limit = pos + n
	}

	s := NewScanner(src)
	w := pos

	for {
		tok, err := s.Next()
		if err != nil {
			return Result{Consumed: s.Consumed(), Produced: w - pos}, err
		}

		switch tok.Kind {
		case TokenEnd:
			return Result{Consumed: s.Consumed(), Produced: w - pos}, nil

		case TokenLiteral:
			if w >= limit {
				return Result{Consumed: s.Consumed(), Produced: w - pos}, ErrOutputOverflow
			}
			dst[w] = tok.Literal
			w++

		case TokenCopy:
			from := w + int(tok.Offset)
			if from < 0 {
				return Result{Consumed: s.Consumed(), Produced: w - pos}, ErrInvalidBackReference
			}
			if w+int(tok.Length) > limit {
				return Result{Consumed: s.Consumed(), Produced: w - pos}, ErrOutputOverflow
			}
			// Byte at a time: when the reference overlaps the bytes being
			// written each copied byte must be visible to the next read.
			for n := tok.Length; n > 0; n-- {
				dst[w] = dst[from]
				w++
				from++
			}
		}
	}
}

// DecodeBlock decodes one block with the default block limit.
func DecodeBlock(dst []byte, pos int, src []byte) (Result, error) {
	var d Decoder
	return d.DecodeBlock(dst, pos, src)
}
