package event

import (
	"context"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/require"
)

// recorder is a Handler remembering every event it sees.
type recorder struct {
	seen   []Event
	result Propagation
}

// OnEvent records ev and returns the configured propagation.
func (r *recorder) OnEvent(_ context.Context, ev Event) Propagation {
	r.seen = append(r.seen, ev)

	return r.result
}

// TestBus_DispatchOrder verifies FIFO delivery and that events posted during dispatch follow.
func TestBus_DispatchOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	first := new(recorder)
	bus.Subscribe(first)

	// The second handler reacts to a raise by posting a display event.
	bus.Subscribe(HandlerFunc(func(_ context.Context, ev Event) Propagation {
		if ev.Type == TypeAlarmRaise {
			bus.Post(DisplayOn("HIGH PRESSURE"))
		}

		return Propagate
	}))

	bus.Post(AlarmRaise(0))
	bus.Post(KeyPress(KeyMute))
	require.Equal(t, 2, bus.Pending())

	delivered := bus.Dispatch(context.Background())
	require.Equal(t, 3, delivered)
	require.Equal(t, 0, bus.Pending())

	require.Len(t, first.seen, 3)
	require.Equal(t, TypeAlarmRaise, first.seen[0].Type)
	require.Equal(t, TypeKeyPress, first.seen[1].Type)
	require.Equal(t, TypeDisplayOn, first.seen[2].Type)
	require.Equal(t, "HIGH PRESSURE", first.seen[2].Message)
	require.False(t, first.seen[0].At.IsZero())
}

// TestBus_Stop ensures a Stop result hides the event from later handlers.
func TestBus_Stop(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	stopper := &recorder{result: Stop}
	after := new(recorder)

	bus.Subscribe(stopper)
	bus.Subscribe(after)

	bus.Post(Reset())
	bus.Dispatch(context.Background())

	require.Len(t, stopper.seen, 1)
	require.Empty(t, after.seen)
}

// TestBus_PanickingHandler verifies that a panic does not break the chain or the loop.
func TestBus_PanickingHandler(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.Subscribe(HandlerFunc(func(context.Context, Event) Propagation {
		panic("classifier bug")
	}))

	after := new(recorder)
	bus.Subscribe(after)

	bus.Post(AlarmRaise(2))
	bus.Post(AlarmRaise(3))

	require.NotPanics(t, func() { bus.Dispatch(context.Background()) })
	require.Len(t, after.seen, 2)
}

// TestBus_Run delivers events posted from other goroutines until the context ends.
func TestBus_Run(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		bus := NewBus()
		rec := new(recorder)
		bus.Subscribe(rec)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- bus.Run(ctx) }()

		go bus.Post(AlarmRaise(1).WithOrigin("sensor"))

		synctest.Wait()
		require.Len(t, rec.seen, 1)
		require.Equal(t, "sensor", rec.seen[0].Origin)

		bus.Post(KeyRelease(KeyMute))
		synctest.Wait()
		require.Len(t, rec.seen, 2)

		cancel()
		require.NoError(t, <-done)
	})
}

// TestType_String covers the log names.
func TestType_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "alarm_raise", TypeAlarmRaise.String())
	require.Equal(t, "display_off", TypeDisplayOff.String())
	require.Equal(t, "type(42)", Type(42).String())
}

func TestSimulatedKey(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"set", "increment", "decrement"} {
		key, err := SimulatedKey(name)
		require.NoError(t, err)
		require.Equal(t, Key(name), key)
	}

	_, err := SimulatedKey("mute")
	require.ErrorIs(t, err, ErrMuteNotSimulated)

	_, err = SimulatedKey("power")
	require.ErrorIs(t, err, ErrUnknownKey)

	require.True(t, KeyMute.Valid())
	require.False(t, Key("").Valid())
}
