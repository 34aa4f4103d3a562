package alarm

import (
	"context"
	"errors"
	"fmt"
)

// ID identifies an alarm kind. It is also the index of the alarm in its
// catalog, so lower ids win when several alarms are on.
type ID int

// Unlimited is the MuteLimit of an alarm that never becomes sound-exhausted.
const Unlimited = -1

var (
	// ErrInvalidAlarmID is reported when an id is outside of the catalog.
	ErrInvalidAlarmID = errors.New("invalid alarm id")
	// ErrUnknownAlarm is returned when a name is not in the catalog.
	ErrUnknownAlarm = errors.New("unknown alarm")
)

// InvalidIDError returns ErrInvalidAlarmID annotated with the offending id and
// the catalog size.
func InvalidIDError(id ID, size int) error {
	return fmt.Errorf("%w: %d (catalog has %d alarms)", ErrInvalidAlarmID, id, size)
}

// Actions are side effects bound to an alarm kind.
type Actions interface {
	// OnTrigger runs when the alarm becomes the active one.
	OnTrigger(ctx context.Context, def Definition)
	// OnMute runs when the active alarm is muted.
	OnMute(ctx context.Context, def Definition)
}

// NoActions is the Actions value of an alarm without hooks.
type NoActions struct{}

// OnTrigger does nothing.
func (NoActions) OnTrigger(context.Context, Definition) {}

// OnMute does nothing.
func (NoActions) OnMute(context.Context, Definition) {}

// ActionFuncs adapts plain functions to Actions. Either field may be left
// nil, in which case that hook does nothing.
type ActionFuncs struct {
	Trigger func(ctx context.Context, def Definition)
	Mute    func(ctx context.Context, def Definition)
}

// OnTrigger calls Trigger when it is set.
func (f ActionFuncs) OnTrigger(ctx context.Context, def Definition) {
	if f.Trigger != nil {
		f.Trigger(ctx, def)
	}
}

// OnMute calls Mute when it is set.
func (f ActionFuncs) OnMute(ctx context.Context, def Definition) {
	if f.Mute != nil {
		f.Mute(ctx, def)
	}
}

// Definition describes one alarm kind. Definitions are values and are never
// modified once placed in a Catalog.
type Definition struct {
	// ID is the position of the alarm in the catalog.
	ID ID
	// Name is the stable machine name used by configuration and the panel.
	Name string
	// Message is the text shown while the alarm is active.
	Message string
	// MuteLimit is how many mutes the alarm tolerates before further
	// activations become visual-only. Unlimited keeps it audible forever.
	MuteLimit int
	// Actions holds the trigger and mute hooks. Never nil inside a Catalog.
	Actions Actions
}

// Exhausted reports whether an alarm muted muteCount times no longer sounds.
func (d Definition) Exhausted(muteCount int) bool {
	return d.MuteLimit != Unlimited && muteCount >= d.MuteLimit
}
