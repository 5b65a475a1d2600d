/*
Package lzss decodes the LZSS variant used by ZAP game bundles.

Format: control bits come from 16-bit little-endian marker words, least
significant bit first. A new marker word is read from the source as soon as
the previous one is used up, so marker words and raw bytes interleave.

	1            literal: next raw byte is copied to the output
	0 0 a b      short copy: raw byte v, offset 0xFFFFFF00|v, length (a<<1|b)+3
	0 1          long copy: raw bytes lo, hi
	             offset ((hi&0xF0)<<4 - 0x1000) | lo, length (hi&0x0F)+3
	             a length nibble of 0 reads one more raw byte n:
	             n == 0 ends the stream, otherwise length is n+1

Offsets are negative and relative to the current write position. Entries
larger than one block are split in zblocks that are decoded one after the
other into the same buffer; a copy in a later block may reach into the
output of an earlier one.

Decode a single block:

	res, err := lzss.DecodeBlock(dst, 0, src)
	if err != nil {
		return err
	}
	out := dst[:res.Produced]

Decode a chained entry:

	n, err := lzss.DecodeChain(dst, payload, zblocks)
*/
package lzss
