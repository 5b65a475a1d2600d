// Package bundletest builds synthetic bundles for tests.
package bundletest

import (
	"encoding/binary"

	"github.com/jchantrell/unzap/internal/bundle"
)

// Entry describes one entry to lay out. Payload holds the stored bytes.
type Entry struct {
	Name         string
	MemoryOffset uint32
	DecodedSize  uint32
	EncodedSize  uint32
	ZBlocks      []uint32
	Pad          uint32
	Payload      []byte
}

// Empty returns an entry marked with the empty size sentinel.
func Empty(name string) Entry {
	return Entry{Name: name, EncodedSize: bundle.EmptySize}
}

// Raw returns an uncompressed entry.
func Raw(name string, data []byte, pad uint32) Entry {
	return Entry{
		Name:        name,
		DecodedSize: uint32(len(data)),
		EncodedSize: uint32(len(data)),
		ZBlocks:     []uint32{uint32(len(data))},
		Pad:         pad,
		Payload:     data,
	}
}

// Compressed returns an entry whose payload is the concatenation of blocks.
func Compressed(name string, decoded uint32, pad uint32, blocks ...[]byte) Entry {
	e := Entry{Name: name, DecodedSize: decoded, Pad: pad}
	for _, b := range blocks {
		e.ZBlocks = append(e.ZBlocks, uint32(len(b)))
		e.Payload = append(e.Payload, b...)
	}
	e.EncodedSize = uint32(len(e.Payload))
	return e
}

// Record encodes the entry table record of e.
func Record(e Entry) []byte {
	rec := make([]byte, bundle.EntrySize)
	binary.LittleEndian.PutUint32(rec[0x00:], e.MemoryOffset)
	binary.LittleEndian.PutUint32(rec[0x04:], e.DecodedSize)
	binary.LittleEndian.PutUint32(rec[0x08:], e.EncodedSize)
	for i, z := range e.ZBlocks {
		if i == bundle.MaxZBlocks {
			break
		}
		binary.LittleEndian.PutUint32(rec[0x0C+4*i:], z)
	}
	binary.LittleEndian.PutUint32(rec[0x90:], e.Pad)
	copy(rec[bundle.MetaSize:bundle.EntrySize-1], e.Name)
	return rec
}

// Build lays out a complete bundle: header, entry table, then per entry the
// meta copy, payload and pad filler.
func Build(entries ...Entry) []byte {
	var out []byte

	out = binary.LittleEndian.AppendUint64(out, bundle.Magic)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	out = binary.LittleEndian.AppendUint32(out, 0)

	for _, e := range entries {
		out = append(out, Record(e)...)
	}

	for _, e := range entries {
		out = append(out, Record(e)[:bundle.MetaSize]...)
		if e.EncodedSize == bundle.EmptySize {
			continue
		}
		out = append(out, e.Payload...)
		for i := uint32(0); i < e.Pad; i++ {
			out = append(out, 0xDC)
		}
	}

	return out
}
