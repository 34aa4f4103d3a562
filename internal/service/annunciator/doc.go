// Package annunciator decides which alarm is announced.
//
// Controller is the state machine: several alarms may be on at once, but
// only the one with the lowest catalog id is active, owning the beeper and
// the display. A caregiver mute silences and clears the active alarm and
// promotes the next pending one. An alarm muted MuteLimit times keeps being
// displayed but no longer sounds.
//
// Service is the event boundary: it translates bus events into controller
// calls and posts the controller's display notifications back to the bus.
package annunciator
