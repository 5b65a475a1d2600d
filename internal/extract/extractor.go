package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/lzss"
	"github.com/jchantrell/unzap/internal/utils"
)

// Stats summarizes one run.
type Stats struct {
	StartTime    time.Time
	EndTime      time.Time
	Entries      int // entries visited
	Extracted    int
	Compressed   int // extracted entries that went through the decoder
	Empty        int
	Skipped      int // filtered out by match patterns
	Failed       int
	BytesWritten int64
}

// Extractor walks a catalog in index order and hands each entry's bytes to
// a sink.
type Extractor struct {
	cat             *bundle.Catalog
	sink            Sink
	observer        Observer
	decoder         *lzss.Decoder
	match           []string
	continueOnError bool
	verifyMeta      bool

	// reused across entries; grown, never shrunk
	scratch []byte
	payload []byte
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(x *Extractor) {
		x.observer = o
	}
}

// WithDecoder replaces the default decoder.
func WithDecoder(d *lzss.Decoder) Option {
	return func(x *Extractor) {
		x.decoder = d
	}
}

// WithMatch restricts extraction to entries whose canonical name matches
// one of the path.Match patterns. No patterns means every entry.
func WithMatch(patterns ...string) Option {
	return func(x *Extractor) {
		x.match = append(x.match, patterns...)
	}
}

// WithContinueOnError keeps going after a failed entry instead of aborting
// the run. Failures are reported as StatusFailed events and joined into
// the error returned by Run.
func WithContinueOnError(enabled bool) Option {
	return func(x *Extractor) {
		x.continueOnError = enabled
	}
}

// WithVerifyMeta checks every duplicate meta record against the table.
func WithVerifyMeta(enabled bool) Option {
	return func(x *Extractor) {
		x.verifyMeta = enabled
	}
}

// New creates an extractor for cat writing to sink.
func New(cat *bundle.Catalog, sink Sink, opts ...Option) (*Extractor, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink cannot be nil")
	}

	x := &Extractor{
		cat:      cat,
		sink:     sink,
		observer: LogObserver{},
		decoder:  &lzss.Decoder{},
		scratch:  make([]byte, lzss.MaxBlockSize),
	}
	for _, opt := range opts {
		opt(x)
	}

	for _, pattern := range x.match {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", pattern, err)
		}
	}

	return x, nil
}

// Run extracts every entry. It stops at the first failure unless
// WithContinueOnError is set. Cancellation is checked between entries.
func (x *Extractor) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		stats.EndTime = time.Now()
	}()

	cur := x.cat.Cursor()
	cur.VerifyMeta = x.verifyMeta

	var failures []error

	for {
		if err := ctx.Err(); err != nil {
			slog.Warn("Extraction canceled", "entries", stats.Entries)
			return stats, fmt.Errorf("extraction canceled: %w", err)
		}

		p, err := cur.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// later offsets depend on this one, nothing more can be read
			ee := &EntryError{Index: stats.Entries, Kind: classify(err), Err: err}
			if stats.Entries < x.cat.Len() {
				e := x.cat.Entries()[stats.Entries]
				ee.Name = e.Name
				stats.Entries++
				x.notify(Event{Entry: e, Status: StatusStarting})
				x.notify(Event{Entry: e, Status: StatusFailed, Err: ee})
			}
			stats.Failed++
			return stats, errors.Join(append(failures, ee)...)
		}

		stats.Entries++
		x.notify(Event{Entry: p.Entry, Status: StatusStarting})

		if err := x.extractEntry(ctx, p, stats); err != nil {
			ee := &EntryError{Index: p.Entry.Index, Name: p.Entry.Name, Kind: classify(err), Err: err}
			stats.Failed++
			x.notify(Event{Entry: p.Entry, Status: StatusFailed, Err: ee})

			if !x.continueOnError {
				return stats, ee
			}
			failures = append(failures, ee)
		}
	}

	return stats, errors.Join(failures...)
}

func (x *Extractor) extractEntry(ctx context.Context, p bundle.Payload, stats *Stats) error {
	e := p.Entry

	if e.Empty() {
		stats.Empty++
		x.notify(Event{Entry: e, Status: StatusSkipped, Path: EmptyMarker})
		return nil
	}

	outputPath := utils.NormalizeName(e.Name)

	if !x.matches(e.Name) {
		stats.Skipped++
		x.notify(Event{Entry: e, Status: StatusSkipped, Path: outputPath})
		return nil
	}

	data, err := x.content(p)
	if err != nil {
		return err
	}

	location, err := x.sink.Write(ctx, e, outputPath, data)
	if err != nil {
		return err
	}

	stats.Extracted++
	stats.BytesWritten += int64(len(data))
	if e.Compressed() {
		stats.Compressed++
	}

	x.notify(Event{Entry: e, Status: StatusCompleted, Path: location, Size: len(data)})
	return nil
}

// content returns the decoded bytes of p. The slice aliases a buffer that
// the next call overwrites.
func (x *Extractor) content(p bundle.Payload) ([]byte, error) {
	var err error
	x.payload, err = x.cat.ReadPayload(p, x.payload)
	if err != nil {
		return nil, err
	}

	e := p.Entry
	if !e.Compressed() {
		return x.payload, nil
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	// the table is untrusted; refuse sizes the blocks cannot produce
	if err := x.decoder.CheckChainSize(uint64(e.DecodedSize), len(e.ZBlocks)); err != nil {
		return nil, err
	}

	size := int(e.DecodedSize)
	if cap(x.scratch) < size {
		x.scratch = make([]byte, size)
	}
	out := x.scratch[:size]

	n, err := x.decoder.DecodeChain(out, x.payload, e.ZBlocks)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("%w: produced %d of %d bytes", bundle.ErrSizeMismatch, n, size)
	}

	return out, nil
}

func (x *Extractor) matches(name string) bool {
	if len(x.match) == 0 {
		return true
	}

	canonical := utils.CanonicalName(name)
	for _, pattern := range x.match {
		if ok, _ := path.Match(pattern, canonical); ok {
			return true
		}
	}
	return false
}

func (x *Extractor) notify(ev Event) {
	if x.observer != nil {
		x.observer.Notify(ev)
	}
}
