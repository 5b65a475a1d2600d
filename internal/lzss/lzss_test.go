package lzss

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// literal 'A', short copy (-1, 3), end of stream
var fourA = []byte{0x41, 0x00, 'A', 0xFF, 0x00, 0x00, 0x00}

// block one: literals "abc", end of stream
var chainBlock1 = []byte{0x17, 0x00, 'a', 'b', 'c', 0x00, 0x00, 0x00}

// block two: long copy (-3, 4), end of stream
var chainBlock2 = []byte{0x0A, 0x00, 0xFD, 0xF1, 0x00, 0x00, 0x00}

func TestDecodeBlockFixedVector(t *testing.T) {
	dst := make([]byte, 16)
	res, err := DecodeBlock(dst, 0, fourA)
	require.NoError(t, err)
	assert.Equal(t, Result{Consumed: len(fourA), Produced: 4}, res)
	assert.Equal(t, "AAAA", string(dst[:res.Produced]))
}

func TestDecodeBlockEndOfStream(t *testing.T) {
	// end marker only, followed by bytes that must not be read
	src := []byte{0x02, 0x00, 0x12, 0x30, 0x00, 0xEE, 0xEE}
	dst := make([]byte, 4)
	res, err := DecodeBlock(dst, 0, src)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Produced)
	assert.Equal(t, 5, res.Consumed)
}

func TestDecodeBlockCopies(t *testing.T) {
	tests := []struct {
		name     string
		src      []byte
		want     string
		consumed int
	}{
		{
			name:     "short copy max length",
			src:      []byte{0x59, 0x00, 'z', 0xFF, 0x00, 0x00, 0x00},
			want:     "zzzzzzz",
			consumed: 7,
		},
		{
			name:     "escaped long copy",
			src:      []byte{0x15, 0x00, 'x', 0xFF, 0xF0, 0x09, 0x00, 0x00, 0x00},
			want:     "xxxxxxxxxxx",
			consumed: 9,
		},
		{
			name:     "long copy",
			src:      []byte{0x57, 0x00, 'a', 'b', 'c', 0xFD, 0xF2, 0x00, 0x00, 0x00},
			want:     "abcabcab",
			consumed: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 64)
			res, err := DecodeBlock(dst, 0, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(dst[:res.Produced]))
			assert.Equal(t, tt.consumed, res.Consumed)
		})
	}
}

func TestDecodeBlockMarkerRefill(t *testing.T) {
	// sixteen literals use up the first marker word; the second one is read
	// right after the sixteenth flag bit, before the sixteenth literal byte
	src := []byte{0xFF, 0xFF}
	src = append(src, []byte("abcdefghijklmno")...)
	src = append(src, 0x02, 0x00)
	src = append(src, 'p')
	src = append(src, 0x00, 0x00, 0x00)

	dst := make([]byte, 32)
	res, err := DecodeBlock(dst, 0, src)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnop", string(dst[:res.Produced]))
	assert.Equal(t, len(src), res.Consumed)
}

func TestDecodeBlockErrors(t *testing.T) {
	tests := []struct {
		name string
		dst  int
		src  []byte
		want error
	}{
		{"empty source", 8, nil, ErrSourceTruncated},
		{"missing end marker", 8, []byte{0x01, 0x00, 'A'}, ErrSourceTruncated},
		{"copy before output start", 8, []byte{0x00, 0x00, 0xFF}, ErrInvalidBackReference},
		{"destination too small", 3, fourA, ErrOutputOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBlock(make([]byte, tt.dst), 0, tt.src)
			require.ErrorIs(t, err, tt.want)

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, -1, fe.Block)
		})
	}
}

func TestDecodeBlockRejectsBadPosition(t *testing.T) {
	for _, pos := range []int{-1, 9} {
		_, err := DecodeBlock(make([]byte, 8), pos, fourA)
		assert.ErrorIs(t, err, ErrOutputOverflow, "pos %d", pos)
	}

	res, err := DecodeBlock(make([]byte, 8), 4, fourA)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Produced)
}

func TestCheckChainSize(t *testing.T) {
	var d Decoder
	assert.NoError(t, d.CheckChainSize(MaxBlockSize, 1))
	assert.NoError(t, d.CheckChainSize(2*MaxBlockSize, 2))
	assert.ErrorIs(t, d.CheckChainSize(MaxBlockSize+1, 1), ErrOutputOverflow)
	assert.ErrorIs(t, d.CheckChainSize(0xC0000000, 1), ErrOutputOverflow)
	assert.ErrorIs(t, d.CheckChainSize(1, 0), ErrOutputOverflow)

	var fe *FormatError
	require.True(t, errors.As(d.CheckChainSize(100, 0), &fe))

	assert.NoError(t, NewDecoder(-1).CheckChainSize(0xC0000000, 1))
	assert.ErrorIs(t, NewDecoder(4).CheckChainSize(5, 1), ErrOutputOverflow)
}

func TestDecoderBlockLimit(t *testing.T) {
	d := NewDecoder(2)
	_, err := d.DecodeBlock(make([]byte, 64), 0, fourA)
	require.ErrorIs(t, err, ErrOutputOverflow)

	d = NewDecoder(-1)
	res, err := d.DecodeBlock(make([]byte, 64), 0, fourA)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Produced)
}

func TestScannerTokens(t *testing.T) {
	s := NewScanner([]byte{0x16, 0x00, 0x00, 0x05, 'q', 0xFF, 0x00, 0x00})

	tok, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, Token{Kind: TokenCopy, Offset: -4096, Length: 8}, tok)

	tok, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, Token{Kind: TokenLiteral, Literal: 'q'}, tok)

	tok, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenEnd, tok.Kind)
	assert.Equal(t, 8, s.Consumed())

	// sticky end
	tok, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenEnd, tok.Kind)
	assert.Equal(t, 8, s.Consumed())
}

func TestTokenProducedMatchesResult(t *testing.T) {
	streams := [][]byte{fourA, chainBlock1, {0x15, 0x00, 'x', 0xFF, 0xF0, 0x09, 0x00, 0x00, 0x00}}

	for _, src := range streams {
		s := NewScanner(src)
		sum := 0
		for {
			tok, err := s.Next()
			require.NoError(t, err)
			if tok.Kind == TokenEnd {
				break
			}
			sum += tok.Produced()
		}

		dst := make([]byte, 64)
		res, err := DecodeBlock(dst, 0, src)
		require.NoError(t, err)
		assert.Equal(t, sum, res.Produced)
		assert.Equal(t, s.Consumed(), res.Consumed)
	}
}

func TestDecodeChainCrossBlockReference(t *testing.T) {
	src := append(append([]byte{}, chainBlock1...), chainBlock2...)
	dst := make([]byte, 7)

	n, err := DecodeChain(dst, src, []uint32{uint32(len(chainBlock1)), uint32(len(chainBlock2))})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "abcabca", string(dst))
}

func TestDecodeChainNeedsPreservedBuffer(t *testing.T) {
	first := make([]byte, 8)
	res, err := DecodeBlock(first, 0, chainBlock1)
	require.NoError(t, err)
	require.Equal(t, 3, res.Produced)

	// a fresh buffer for block two loses the bytes it refers to
	_, err = DecodeBlock(make([]byte, 8), 0, chainBlock2)
	require.ErrorIs(t, err, ErrInvalidBackReference)

	// continuing in the same buffer resolves them
	res, err = DecodeBlock(first, res.Produced, chainBlock2)
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("abcabca"), first[:3+res.Produced]))
}

func TestDecodeChainErrors(t *testing.T) {
	src := append(append([]byte{}, chainBlock1...), chainBlock2...)

	_, err := DecodeChain(make([]byte, 16), src, []uint32{9, 6})
	require.ErrorIs(t, err, ErrBlockSizeMismatch)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.Block)

	_, err = DecodeChain(make([]byte, 16), src, []uint32{8, 10})
	require.ErrorIs(t, err, ErrSourceTruncated)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Block)

	_, err = DecodeChain(make([]byte, 5), src, []uint32{8, 7})
	require.ErrorIs(t, err, ErrOutputOverflow)
}

func TestDecodeChainEmpty(t *testing.T) {
	n, err := DecodeChain(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
