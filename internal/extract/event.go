package extract

import (
	"fmt"
	"log/slog"

	"github.com/jchantrell/unzap/internal/bundle"
)

// EmptyMarker is the event path of entries without payload.
const EmptyMarker = "<empty>"

// Status is the lifecycle stage an Event reports.
type Status int

const (
	StatusStarting Status = iota
	StatusSkipped
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusSkipped:
		return "skipped"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Event is delivered once before and once after every entry.
type Event struct {
	Entry  bundle.Entry
	Status Status
	Path   string // output identifier on completion, EmptyMarker for empty entries
	Size   int    // bytes handed to the sink
	Err    error
}

// Observer receives lifecycle events synchronously.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(ev Event) {
	f(ev)
}

// Observers fans an event out in order.
type Observers []Observer

func (o Observers) Notify(ev Event) {
	for _, obs := range o {
		obs.Notify(ev)
	}
}

// LogObserver logs every event through slog.
type LogObserver struct{}

func (LogObserver) Notify(ev Event) {
	switch ev.Status {
	case StatusStarting:
		slog.Debug("Extracting entry", "index", ev.Entry.Index, "entry", ev.Entry.Name, "kind", ev.Entry.Kind())
	case StatusSkipped:
		slog.Debug("Skipped entry", "index", ev.Entry.Index, "entry", ev.Entry.Name, "path", ev.Path)
	case StatusCompleted:
		slog.Debug("Extracted entry", "index", ev.Entry.Index, "path", ev.Path, "size", ev.Size)
	case StatusFailed:
		slog.Warn("Failed to extract entry", "index", ev.Entry.Index, "entry", ev.Entry.Name, "error", ev.Err)
	}
}
