// Package event is the in-process event bus of the alarm controller.
//
// Producers (sensor classifiers, the keypad, the remote panel) Post events.
// A single goroutine running Bus.Run hands them, one at a time and in arrival
// order, to an ordered chain of Handlers. Posting never blocks and never
// drops an event.
package event
