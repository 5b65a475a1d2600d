package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Catalog is an opened bundle: its header and decoded entry table over a
// read-only random access source.
type Catalog struct {
	data    io.ReaderAt
	size    int64
	header  Header
	entries []Entry
	closer  io.Closer
}

// Open opens the bundle file at path.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	c, err := New(f, info.Size())
	if err != nil {
		f.Close()
		var oe *OpenError
		if errors.As(err, &oe) {
			oe.Path = path
		}
		return nil, err
	}
	c.closer = f

	slog.Debug("Bundle opened", "path", path, "size", info.Size(), "entries", len(c.entries))

	return c, nil
}

// New reads the header and entry table from r, which holds size bytes.
func New(r io.ReaderAt, size int64) (*Catalog, error) {
	if size < HeaderSize {
		return nil, &OpenError{Err: fmt.Errorf("%w: %d bytes", ErrShortHeader, size)}
	}

	var hb [HeaderSize]byte
	if _, err := readFull(r, hb[:], 0); err != nil {
		return nil, &OpenError{Err: fmt.Errorf("reading header: %w", err)}
	}

	h := Header{
		Magic:      binary.LittleEndian.Uint64(hb[0:]),
		EntryCount: binary.LittleEndian.Uint32(hb[8:]),
		Reserved:   binary.LittleEndian.Uint32(hb[12:]),
	}

	// check the magic before trusting anything else
	if h.Magic != Magic {
		return nil, &OpenError{Err: fmt.Errorf("%w: %#016x", ErrBadMagic, h.Magic)}
	}

	if h.Reserved != 0 {
		slog.Warn("Unexpected reserved header value", "value", h.Reserved)
	}

	tableEnd := int64(HeaderSize) + int64(h.EntryCount)*EntrySize
	if tableEnd > size {
		return nil, &OpenError{Err: fmt.Errorf("%w: %d entries need %d bytes, have %d", ErrShortTable, h.EntryCount, tableEnd, size)}
	}

	table := make([]byte, tableEnd-HeaderSize)
	if _, err := readFull(r, table, HeaderSize); err != nil {
		return nil, &OpenError{Err: fmt.Errorf("reading entry table: %w", err)}
	}

	entries := make([]Entry, h.EntryCount)
	for i := range entries {
		entries[i] = parseEntry(i, table[i*EntrySize:(i+1)*EntrySize])
	}

	return &Catalog{
		data:    r,
		size:    size,
		header:  h,
		entries: entries,
	}, nil
}

// parseEntry decodes one EntrySize record.
func parseEntry(index int, rec []byte) Entry {
	e := Entry{
		Index:        index,
		MemoryOffset: binary.LittleEndian.Uint32(rec[offMemory:]),
		DecodedSize:  binary.LittleEndian.Uint32(rec[offDecoded:]),
		EncodedSize:  binary.LittleEndian.Uint32(rec[offEncoded:]),
		Pad:          binary.LittleEndian.Uint32(rec[offPad:]),
		Reserved:     binary.LittleEndian.Uint32(rec[offUnk94:]),
		meta:         rec[:MetaSize:MetaSize],
	}

	for i := 0; i < MaxZBlocks; i++ {
		z := binary.LittleEndian.Uint32(rec[offZBlocks+4*i:])
		if z == 0 {
			break
		}
		e.ZBlocks = append(e.ZBlocks, z)
	}

	name := rec[offName : offName+NameSize]
	if n := bytes.IndexByte(name, 0); n >= 0 {
		name = name[:n]
	}
	e.Name = string(name)

	return e
}

// Header returns the bundle header.
func (c *Catalog) Header() Header {
	return c.header
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Size returns the size of the underlying source in bytes.
func (c *Catalog) Size() int64 {
	return c.size
}

// Entries returns the entry table in index order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// payloadStart is the offset of the first duplicate meta record.
func (c *Catalog) payloadStart() int64 {
	return int64(HeaderSize) + int64(len(c.entries))*EntrySize
}

// ReadPayload reads the stored bytes of p, reusing buf when it is large
// enough. The returned slice aliases buf.
func (c *Catalog) ReadPayload(p Payload, buf []byte) ([]byte, error) {
	n := int(p.Size())
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]

	if _, err := readFull(c.data, buf, p.Offset); err != nil {
		return nil, fmt.Errorf("reading payload of %q at %d: %w", p.Entry.Name, p.Offset, err)
	}

	return buf, nil
}

// Close releases the file opened by Open. It is a no-op for catalogs
// created with New.
func (c *Catalog) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// readFull is io.ReadFull for io.ReaderAt; a ReaderAt may report io.EOF
// together with a complete read at the end of the source.
func readFull(r io.ReaderAt, p []byte, off int64) (int, error) {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
