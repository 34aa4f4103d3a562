package event

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Type tells what an Event carries.
type Type uint8

const (
	// TypeAlarmRaise reports a classified alarm condition in AlarmID.
	TypeAlarmRaise Type = iota + 1
	// TypeKeyPress reports a key going down.
	TypeKeyPress
	// TypeKeyRelease reports a key going up.
	TypeKeyRelease
	// TypeReset asks for a full alarm reset.
	TypeReset
	// TypeDisplayOn asks the display to show Message.
	TypeDisplayOn
	// TypeDisplayOff asks the display to clear the alarm message.
	TypeDisplayOff
)

// String returns the log name of the type.
func (t Type) String() string {
	switch t {
	case TypeAlarmRaise:
		return "alarm_raise"
	case TypeKeyPress:
		return "key_press"
	case TypeKeyRelease:
		return "key_release"
	case TypeReset:
		return "reset"
	case TypeDisplayOn:
		return "display_on"
	case TypeDisplayOff:
		return "display_off"
	default:
		return fmt.Sprintf("type(%d)", t)
	}
}

// Key names a front-panel key.
type Key string

// Front-panel keys.
const (
	KeyMute      Key = "mute"
	KeySet       Key = "set"
	KeyIncrement Key = "increment"
	KeyDecrement Key = "decrement"
)

var (
	// ErrUnknownKey is returned for names that are not front-panel keys.
	ErrUnknownKey = errors.New("unknown key")
	// ErrMuteNotSimulated is returned when the mute key is mapped to an alarm.
	ErrMuteNotSimulated = errors.New("mute key cannot raise alarms")
)

// Valid reports whether k is a front-panel key.
func (k Key) Valid() bool {
	switch k {
	case KeyMute, KeySet, KeyIncrement, KeyDecrement:
		return true
	default:
		return false
	}
}

// SimulatedKey parses the name of a key that may raise alarms in simulation.
// The mute key always keeps muting.
func SimulatedKey(name string) (Key, error) {
	key := Key(name)

	switch {
	case !key.Valid():
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	case key == KeyMute:
		return "", ErrMuteNotSimulated
	default:
		return key, nil
	}
}

// Event is one message on the bus. Only the fields relevant to Type are set.
type Event struct {
	Type Type
	// AlarmID is the raised alarm. It is a plain int because producers may
	// send ids that are not in the catalog.
	AlarmID int
	Key     Key
	Message string
	// Origin describes who produced the event, e.g. "keypad" or "panel:nurse@ward3".
	Origin string
	// At is stamped by the bus when the event is posted.
	At time.Time
}

// AlarmRaise builds an alarm-raise event.
func AlarmRaise(id int) Event {
	return Event{Type: TypeAlarmRaise, AlarmID: id}
}

// KeyPress builds a key-press event.
func KeyPress(key Key) Event {
	return Event{Type: TypeKeyPress, Key: key}
}

// KeyRelease builds a key-release event.
func KeyRelease(key Key) Event {
	return Event{Type: TypeKeyRelease, Key: key}
}

// Reset builds a reset-all event.
func Reset() Event {
	return Event{Type: TypeReset}
}

// DisplayOn builds a display notification carrying message.
func DisplayOn(message string) Event {
	return Event{Type: TypeDisplayOn, Message: message}
}

// DisplayOff builds a display-clear notification.
func DisplayOff() Event {
	return Event{Type: TypeDisplayOff}
}

// WithOrigin returns a copy of e produced by origin.
func (e Event) WithOrigin(origin string) Event {
	e.Origin = origin

	return e
}

// Propagation tells the bus whether later handlers see the event.
type Propagation uint8

const (
	// Propagate passes the event on to the next handler.
	Propagate Propagation = iota
	// Stop ends dispatch of the event.
	Stop
)

// Handler consumes events on the dispatch goroutine.
type Handler interface {
	OnEvent(ctx context.Context, ev Event) Propagation
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) Propagation

// OnEvent calls f.
func (f HandlerFunc) OnEvent(ctx context.Context, ev Event) Propagation {
	return f(ctx, ev)
}

// Poster accepts events for later dispatch.
type Poster interface {
	Post(ev Event)
}
