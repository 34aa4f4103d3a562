package annunciator

import "github.com/oshokin/vent-alarm/internal/domain/alarm"

// AlarmState is the runtime view of one alarm kind.
type AlarmState struct {
	ID        alarm.ID
	Name      string
	Message   string
	MuteLimit int
	Status    alarm.Status
	MuteCount int
	// Exhausted is set once the alarm has used up its mute limit.
	Exhausted bool
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	// Active is the active alarm; meaningful only when HasActive is set.
	Active    alarm.ID
	HasActive bool
	Beeping   bool
	Alarms    []AlarmState
}

// ActiveState returns the state of the active alarm.
func (s Snapshot) ActiveState() (AlarmState, bool) {
	if !s.HasActive {
		return AlarmState{}, false
	}

	return s.Alarms[s.Active], true
}

// Snapshot copies the controller state. It allocates and is meant for
// diagnostics, not for the event path.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Active:    c.active,
		HasActive: c.active != noActive,
		Beeping:   c.beeping,
		Alarms:    make([]AlarmState, 0, c.catalog.Len()),
	}

	for _, def := range c.catalog.Definitions() {
		rt := c.table.Get(def.ID)

		snap.Alarms = append(snap.Alarms, AlarmState{
			ID:        def.ID,
			Name:      def.Name,
			Message:   def.Message,
			MuteLimit: def.MuteLimit,
			Status:    rt.Status,
			MuteCount: rt.MuteCount,
			Exhausted: def.Exhausted(rt.MuteCount),
		})
	}

	return snap
}
