package annunciator

import (
	"context"

	"github.com/oshokin/vent-alarm/internal/domain/alarm"
	"github.com/oshokin/vent-alarm/internal/hal"
	"github.com/oshokin/vent-alarm/internal/logger"
)

// Notifier receives the display side of controller transitions.
type Notifier interface {
	DisplayOn(ctx context.Context, message string)
	DisplayOff(ctx context.Context)
}

// noActive marks the absence of an active alarm.
const noActive alarm.ID = -1

// Controller is the alarm state machine. It is not safe for concurrent use.
type Controller struct {
	catalog  *alarm.Catalog
	table    *alarm.RuntimeTable
	beeper   hal.Beeper
	notifier Notifier

	// active is the alarm owning the beeper and display, or noActive.
	active alarm.ID
	// beeping mirrors the last state sent to the beeper.
	beeping bool
}

// NewController creates a controller with every alarm off. The beeper is
// assumed to be off.
func NewController(catalog *alarm.Catalog, beeper hal.Beeper, notifier Notifier) *Controller {
	return &Controller{
		catalog:  catalog,
		table:    alarm.NewRuntimeTable(catalog),
		beeper:   beeper,
		notifier: notifier,
		active:   noActive,
	}
}

// Raise turns alarm id on and announces it if nothing else is active. An id
// outside the catalog is logged and ignored; the returned error wraps
// alarm.ErrInvalidAlarmID.
func (c *Controller) Raise(ctx context.Context, id alarm.ID) error {
	def, err := c.catalog.Definition(id)
	if err != nil {
		logger.ErrorKV(ctx, "Alarm with bad id dropped", "id", int(id), "error", err)

		return err
	}

	c.table.SetStatus(id, alarm.StatusOn)

	logger.DebugKV(ctx, "Alarm raised",
		"alarm", def.Name,
		"mute_count", c.table.Get(id).MuteCount,
		"exhausted", def.Exhausted(c.table.Get(id).MuteCount),
	)

	c.electNext(ctx, false)

	return nil
}

// MuteActive silences and clears the active alarm, then promotes the next
// pending one. It reports whether an alarm was muted.
func (c *Controller) MuteActive(ctx context.Context) bool {
	if c.active == noActive {
		return false
	}

	id := c.active
	def, _ := c.catalog.Definition(id) //nolint:errcheck // active is always a catalog id.

	c.setBeeper(ctx, false)
	def.Actions.OnMute(ctx, def)

	c.table.SetStatus(id, alarm.StatusOff)
	c.table.BumpMuteCount(id)
	c.active = noActive

	logger.InfoKV(ctx, "Alarm muted", "alarm", def.Name, "mute_count", c.table.Get(id).MuteCount)

	c.notifier.DisplayOff(ctx)
	c.electNext(ctx, true)

	return true
}

// ResetAll turns every alarm off and clears all mute counts.
func (c *Controller) ResetAll(ctx context.Context) {
	for id := range alarm.ID(c.table.Len()) {
		c.table.Reset(id)
	}

	c.active = noActive
	c.setBeeper(ctx, false)

	logger.Info(ctx, "All alarms reset")

	c.notifier.DisplayOff(ctx)
}

// Tick is the periodic hook of the controller. Alarms do not escalate over
// time yet, so it does nothing.
func (c *Controller) Tick(context.Context) {}

// Active returns the active alarm, if any.
func (c *Controller) Active() (alarm.ID, bool) {
	return c.active, c.active != noActive
}

// Beeping reports whether the beeper is driven on.
func (c *Controller) Beeping() bool {
	return c.beeping
}

// Runtime returns the runtime state of a catalog alarm.
func (c *Controller) Runtime(id alarm.ID) (alarm.Runtime, error) {
	if !c.catalog.Valid(id) {
		return alarm.Runtime{}, alarm.InvalidIDError(id, c.catalog.Len())
	}

	return c.table.Get(id), nil
}

// electNext makes the highest-priority alarm that is on the active one,
// unless an alarm is already active. fromMute tells whether a mute uncovered
// the alarm; both paths sound unless the alarm is exhausted.
func (c *Controller) electNext(ctx context.Context, fromMute bool) {
	if c.active != noActive {
		return
	}

	for id := range alarm.ID(c.catalog.Len()) {
		def, _ := c.catalog.Definition(id) //nolint:errcheck // id is in range.

		rt := c.table.Get(id)
		if rt.Status != alarm.StatusOn {
			continue
		}

		c.active = id
		exhausted := def.Exhausted(rt.MuteCount)

		logger.InfoKV(ctx, "Alarm activated",
			"alarm", def.Name,
			"from_mute", fromMute,
			"visual_only", exhausted,
		)

		def.Actions.OnTrigger(ctx, def)
		c.notifier.DisplayOn(ctx, def.Message)
		c.setBeeper(ctx, !exhausted)

		return
	}
}

// setBeeper forwards transitions only.
func (c *Controller) setBeeper(ctx context.Context, on bool) {
	if c.beeping == on {
		return
	}

	c.beeping = on
	c.beeper.SetBeeper(ctx, on)
}
