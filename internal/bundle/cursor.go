package bundle

import (
	"bytes"
	"fmt"
	"io"
)

// Cursor walks the payload section. Payload offsets are only known by
// replaying every earlier entry, so entries come out strictly in index
// order.
type Cursor struct {
	c      *Catalog
	next   int
	offset int64
	err    error

	// VerifyMeta compares each duplicate meta record with the entry table.
	VerifyMeta bool
}

// Cursor returns a cursor positioned before the first entry.
func (c *Catalog) Cursor() *Cursor {
	return &Cursor{c: c, offset: c.payloadStart()}
}

// Offset returns the position of the next duplicate meta record.
func (cur *Cursor) Offset() int64 {
	return cur.offset
}

// Next locates the next entry's payload and advances past it. It returns
// io.EOF after the last entry. Once an error other than io.EOF has been
// returned the cursor stays failed, since later offsets cannot be trusted.
func (cur *Cursor) Next() (Payload, error) {
	if cur.err != nil {
		return Payload{}, cur.err
	}
	if cur.next >= len(cur.c.entries) {
		return Payload{}, io.EOF
	}

	e := cur.c.entries[cur.next]
	p := Payload{
		Entry:      e,
		MetaOffset: cur.offset,
		Offset:     cur.offset + MetaSize,
	}

	end := p.Offset + p.Size()
	if !e.Empty() && end > cur.c.size {
		cur.err = fmt.Errorf("entry %d %q: %w: ends at %d, bundle is %d bytes", e.Index, e.Name, ErrPayloadOutOfRange, end, cur.c.size)
		return Payload{}, cur.err
	}

	if cur.VerifyMeta {
		if err := cur.verify(p); err != nil {
			cur.err = err
			return Payload{}, err
		}
	}

	// empty entries still carry their meta copy, but no pad
	if e.Empty() {
		cur.offset += MetaSize
	} else {
		cur.offset = end + int64(e.Pad)
	}
	cur.next++

	return p, nil
}

func (cur *Cursor) verify(p Payload) error {
	var dup [MetaSize]byte
	if _, err := readFull(cur.c.data, dup[:], p.MetaOffset); err != nil {
		return fmt.Errorf("entry %d %q: reading meta copy: %w", p.Entry.Index, p.Entry.Name, err)
	}
	if !bytes.Equal(dup[:], p.Entry.meta) {
		return fmt.Errorf("entry %d %q: %w at %d", p.Entry.Index, p.Entry.Name, ErrMetaMismatch, p.MetaOffset)
	}
	return nil
}
