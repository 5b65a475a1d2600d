package bundle

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/jchantrell/unzap/internal/lzss"
	"github.com/jchantrell/unzap/internal/utils"
)

// Manager provides name based access to single entries of a catalog.
type Manager struct {
	cat      *Catalog
	decoder  *lzss.Decoder
	names    map[string]int
	cursor   *Cursor
	payloads []Payload
}

// NewManager creates a manager over cat. A nil decoder uses the default
// block limit.
func NewManager(cat *Catalog, decoder *lzss.Decoder) *Manager {
	if decoder == nil {
		decoder = &lzss.Decoder{}
	}

	names := make(map[string]int, cat.Len())
	for i := range cat.entries {
		names[utils.CanonicalName(cat.entries[i].Name)] = i
	}

	return &Manager{
		cat:     cat,
		decoder: decoder,
		names:   names,
	}
}

// FileExists reports whether an entry with the given name exists, compared
// after case and separator normalization.
func (m *Manager) FileExists(name string) bool {
	_, ok := m.names[utils.CanonicalName(name)]
	return ok
}

// Entry returns the table entry for name.
func (m *Manager) Entry(name string) (Entry, bool) {
	idx, ok := m.names[utils.CanonicalName(name)]
	if !ok {
		return Entry{}, false
	}
	return m.cat.entries[idx], true
}

// GetFile returns the decoded contents of the named entry. Empty entries
// yield an empty slice.
func (m *Manager) GetFile(name string) ([]byte, error) {
	idx, ok := m.names[utils.CanonicalName(name)]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}

	if err := m.locate(idx); err != nil {
		return nil, err
	}

	p := m.payloads[idx]
	slog.Debug("Found entry", "index", idx, "name", p.Entry.Name, "offset", p.Offset, "kind", p.Entry.Kind())

	if p.Entry.Empty() {
		return []byte{}, nil
	}

	data, err := m.cat.ReadPayload(p, nil)
	if err != nil {
		return nil, err
	}

	if !p.Entry.Compressed() {
		return data, nil
	}

	if err := p.Entry.Validate(); err != nil {
		return nil, err
	}

	if err := m.decoder.CheckChainSize(uint64(p.Entry.DecodedSize), len(p.Entry.ZBlocks)); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", p.Entry.Name, err)
	}

	out := make([]byte, p.Entry.DecodedSize)
	n, err := m.decoder.DecodeChain(out, data, p.Entry.ZBlocks)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", p.Entry.Name, err)
	}
	if n != len(out) {
		return nil, fmt.Errorf("decoding %q: %w: produced %d of %d bytes", p.Entry.Name, ErrSizeMismatch, n, len(out))
	}

	return out, nil
}

// locate replays the payload section up to and including entry idx.
// Located payloads are kept, so later lookups only replay what is new.
func (m *Manager) locate(idx int) error {
	if m.cursor == nil {
		m.cursor = m.cat.Cursor()
		m.payloads = make([]Payload, 0, m.cat.Len())
	}

	for len(m.payloads) <= idx {
		p, err := m.cursor.Next()
		if err == io.EOF {
			return fmt.Errorf("locating entry %d: %w", idx, io.ErrUnexpectedEOF)
		}
		if err != nil {
			return fmt.Errorf("locating payloads: %w", err)
		}
		m.payloads = append(m.payloads, p)
	}

	return nil
}

// Close closes the underlying catalog.
func (m *Manager) Close() error {
	return m.cat.Close()
}
