package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/logger"
)

// Entry is one journal record.
type Entry struct {
	ID      uuid.UUID
	At      time.Time
	Type    string
	AlarmID int
	Key     string
	Message string
	Origin  string
}

// Journal stores entries in arrival order.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
	// List returns up to limit most recent entries, oldest first. A limit
	// of zero or less returns everything.
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown journal driver")

// Open creates the journal for driver at path. The "none" driver returns a
// nil Journal and no error.
//
//nolint:ireturn // The backend is chosen by configuration.
func Open(ctx context.Context, driver, path string) (Journal, error) {
	switch driver {
	case "none":
		return nil, nil //nolint:nilnil // A disabled journal is not an error.
	case "file":
		return OpenFile(path)
	case "sqlite":
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// NewEntry converts a bus event to a journal entry with a fresh id.
func NewEntry(ev event.Event) Entry {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	return Entry{
		ID:      uuid.New(),
		At:      at.UTC(),
		Type:    ev.Type.String(),
		AlarmID: ev.AlarmID,
		Key:     string(ev.Key),
		Message: ev.Message,
		Origin:  ev.Origin,
	}
}

// Recorder is a bus handler appending every event to a journal. A failing
// journal is logged and never blocks alarm handling.
type Recorder struct {
	journal Journal
}

// NewRecorder creates a recorder writing to j.
func NewRecorder(j Journal) *Recorder {
	return &Recorder{journal: j}
}

// OnEvent appends ev and passes it on.
func (r *Recorder) OnEvent(ctx context.Context, ev event.Event) event.Propagation {
	entry := NewEntry(ev)

	if err := r.journal.Append(ctx, entry); err != nil {
		logger.ErrorKV(logger.WithName(ctx, "journal"), "Failed to append journal entry",
			"type", entry.Type,
			"error", err,
		)
	}

	return event.Propagate
}
