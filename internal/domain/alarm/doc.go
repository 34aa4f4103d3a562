// Package alarm contains the domain model of the alarm annunciator.
//
// A Catalog is the immutable, priority-ordered table of alarm Definitions.
// A RuntimeTable holds the mutable per-alarm state (on/off and mute count)
// indexed in parallel with the catalog. Neither type is safe for concurrent
// use; the annunciator owns both and mutates them from one goroutine.
package alarm
