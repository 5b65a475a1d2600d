package bundle

import "fmt"

// On-disk layout, all fields little-endian.
const (
	Magic      uint64 = 0x0123456789ABCDEF
	HeaderSize        = 0x10
	EntrySize         = 0x198 // one record of the entry table
	MetaSize          = 0x98  // record without the name; repeated before each payload
	NameSize          = 0x100
	MaxZBlocks        = 0x21

	// EmptySize in the encoded size field marks an entry without payload.
	EmptySize uint32 = 0xDCDCDCDC
)

// entry record field offsets
const (
	offMemory  = 0x00
	offDecoded = 0x04
	offEncoded = 0x08
	offZBlocks = 0x0C
	offPad     = 0x90
	offUnk94   = 0x94
	offName    = 0x98
)

// Header is the fixed bundle header at offset 0.
type Header struct {
	Magic      uint64
	EntryCount uint32
	Reserved   uint32
}

// Entry is one record of the entry table.
type Entry struct {
	Index        int
	MemoryOffset uint32 // in-game load address, not used for extraction
	DecodedSize  uint32
	EncodedSize  uint32
	ZBlocks      []uint32 // compressed length of each zblock, terminator dropped
	Pad          uint32
	Reserved     uint32
	Name         string

	meta []byte
}

// Empty reports whether the entry has no payload at all.
func (e *Entry) Empty() bool {
	return e.EncodedSize == EmptySize
}

// Compressed reports whether the payload must go through the decoder.
func (e *Entry) Compressed() bool {
	return !e.Empty() && e.DecodedSize > e.EncodedSize
}

// Kind is a short label for listings.
func (e *Entry) Kind() string {
	switch {
	case e.Empty():
		return "empty"
	case e.Compressed():
		return "compressed"
	default:
		return "raw"
	}
}

// ZBlockTotal sums the zblock lengths.
func (e *Entry) ZBlockTotal() uint64 {
	var total uint64
	for _, z := range e.ZBlocks {
		total += uint64(z)
	}
	return total
}

// Validate checks the zblock list of a compressed entry against its
// encoded size.
func (e *Entry) Validate() error {
	if !e.Compressed() {
		return nil
	}
	if total := e.ZBlockTotal(); total != uint64(e.EncodedSize) {
		return fmt.Errorf("entry %d %q: %w: %d != %d", e.Index, e.Name, ErrZBlockSum, total, e.EncodedSize)
	}
	return nil
}

// Meta returns the raw 0x98-byte meta record as stored in the entry table.
func (e *Entry) Meta() []byte {
	return e.meta
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.Kind())
}

// Payload locates the stored bytes of one entry.
type Payload struct {
	Entry      Entry
	MetaOffset int64 // duplicate meta record
	Offset     int64 // first payload byte
}

// Size is the number of stored payload bytes.
func (p *Payload) Size() int64 {
	if p.Entry.Empty() {
		return 0
	}
	return int64(p.Entry.EncodedSize)
}
