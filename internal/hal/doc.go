// Package hal holds the output collaborators of the annunciator: the beeper
// driver and the display sink that renders display notifications from the bus.
package hal
