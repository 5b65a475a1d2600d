package lzss

import "fmt"

// TokenKind identifies a decoded instruction.
type TokenKind uint8

const (
	TokenLiteral TokenKind = iota
	TokenCopy
	TokenEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenCopy:
		return "copy"
	case TokenEnd:
		return "end"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// Token is one instruction of the compressed stream.
//
// Offset is always negative and relative to the write position at the time
// the token is applied. Length is in bytes. Literal is only meaningful for
// TokenLiteral.
type Token struct {
	Kind    TokenKind
	Literal byte
	Offset  int32
	Length  uint32
}

// Produced returns the number of output bytes the token writes.
func (t Token) Produced() int {
	switch t.Kind {
	case TokenLiteral:
		return 1
	case TokenCopy:
		return int(t.Length)
	default:
		return 0
	}
}

// Scanner reads tokens from one compressed block. It does not touch the
// output; Decoder applies the tokens it yields.
type Scanner struct {
	r    *bitReader
	done bool
}

// NewScanner starts scanning src. The first marker word is loaded
// immediately.
func NewScanner(src []byte) *Scanner {
	return &Scanner{r: newBitReader(src)}
}

// Consumed returns the number of source bytes read so far, marker words
// included.
func (s *Scanner) Consumed() int {
	return s.r.pos
}

// Next decodes the next token. After TokenEnd has been returned every
// further call returns TokenEnd again without reading.
func (s *Scanner) Next() (Token, error) {
	if s.done {
		return Token{Kind: TokenEnd}, nil
	}

	r := s.r

	flag, err := r.bit()
	if err != nil {
		return Token{}, err
	}
	if flag == 1 {
		b, err := r.byte()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenLiteral, Literal: b}, nil
	}

	long, err := r.bit()
	if err != nil {
		return Token{}, err
	}

	if long == 0 {
		a, err := r.bit()
		if err != nil {
			return Token{}, err
		}
		b, err := r.bit()
		if err != nil {
			return Token{}, err
		}
		v, err := r.byte()
		if err != nil {
			return Token{}, err
		}

		return Token{
			Kind:   TokenCopy,
			Offset: int32(0xFFFFFF00 | uint32(v)),
			Length: (a<<1 | b) + 3,
		}, nil
	}

	lo, err := r.byte()
	if err != nil {
		return Token{}, err
	}
	hi, err := r.byte()
	if err != nil {
		return Token{}, err
	}

	x := (uint32(hi&0xF0)<<4 - 0x1000) | uint32(lo)
	l := uint32(hi&0x0F) + 3

	// A zero length nibble escapes to an extra length byte; zero there ends
	// the stream and the offset just read is discarded.
	if l == 3 {
		n, err := r.byte()
		if err != nil {
			return Token{}, err
		}
		if n == 0 {
			s.done = true
			return Token{Kind: TokenEnd}, nil
		}
		l = uint32(n) + 1
	}

	return Token{Kind: TokenCopy, Offset: int32(x), Length: l}, nil
}
