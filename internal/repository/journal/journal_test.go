package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/logger"
)

var errDiskFull = errors.New("disk full")

// failingJournal rejects every append.
type failingJournal struct{}

// Append always fails.
func (failingJournal) Append(context.Context, Entry) error { return errDiskFull }

// List returns nothing.
func (failingJournal) List(context.Context, int) ([]Entry, error) { return nil, nil }

// Close does nothing.
func (failingJournal) Close() error { return nil }

// openers lists the backends exercised by the shared tests.
func openers(t *testing.T) map[string]func() Journal {
	t.Helper()

	return map[string]func() Journal{
		"file": func() Journal {
			j, err := OpenFile(filepath.Join(t.TempDir(), "journal.jsonl"))
			require.NoError(t, err)

			return j
		},
		"sqlite": func() Journal {
			j, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
			require.NoError(t, err)

			return j
		},
	}
}

// TestJournal_AppendList records bus events and lists them back in order.
func TestJournal_AppendList(t *testing.T) {
	t.Parallel()

	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			j := open()
			defer func() { require.NoError(t, j.Close()) }()

			ctx := context.Background()
			at := time.Date(2026, 10, 19, 8, 30, 0, 123, time.UTC)

			events := []event.Event{
				{Type: event.TypeAlarmRaise, AlarmID: 1, Origin: "sensor", At: at},
				{Type: event.TypeDisplayOn, Message: "LOW PRESSURE", Origin: "annunciator", At: at},
				{Type: event.TypeKeyPress, Key: event.KeyMute, Origin: "keypad", At: at},
			}

			for _, ev := range events {
				require.NoError(t, j.Append(ctx, NewEntry(ev)))
			}

			all, err := j.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)

			require.Equal(t, "alarm_raise", all[0].Type)
			require.Equal(t, 1, all[0].AlarmID)
			require.Equal(t, "sensor", all[0].Origin)
			require.True(t, at.Equal(all[0].At))
			require.Equal(t, "LOW PRESSURE", all[1].Message)
			require.Equal(t, "mute", all[2].Key)
			require.NotEqual(t, all[0].ID, all[1].ID)

			last, err := j.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, last, 2)
			require.Equal(t, "display_on", last[0].Type)
			require.Equal(t, "key_press", last[1].Type)
		})
	}
}

// TestRecorder_LogsFailures keeps propagating when the journal fails.
func TestRecorder_LogsFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	r := NewRecorder(failingJournal{})

	require.Equal(t, event.Propagate, r.OnEvent(ctx, event.Reset()))
	require.Equal(t, 1, logs.FilterMessage("Failed to append journal entry").Len())
}

// TestRecorder_OnBus records events dispatched by a bus.
func TestRecorder_OnBus(t *testing.T) {
	t.Parallel()

	j, err := OpenFile(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)

	defer func() { _ = j.Close() }()

	bus := event.NewBus()
	bus.Subscribe(NewRecorder(j))

	bus.Post(event.AlarmRaise(0).WithOrigin("sensor"))
	bus.Post(event.Reset())
	bus.Dispatch(context.Background())

	entries, err := j.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "reset", entries[1].Type)
}

// TestOpen covers driver selection.
func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	j, err := Open(ctx, "none", "")
	require.NoError(t, err)
	require.Nil(t, j)

	j, err = Open(ctx, "file", filepath.Join(t.TempDir(), "j.jsonl"))
	require.NoError(t, err)
	require.IsType(t, new(FileJournal), j)
	require.NoError(t, j.Close())

	_, err = Open(ctx, "kafka", "")
	require.ErrorIs(t, err, ErrUnknownDriver)
}
