package hal

import (
	"context"
	"sync"

	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/logger"
)

// Display keeps the alarm line the controller asked to show. It subscribes
// to the bus after the annunciator.
type Display struct {
	mu      sync.RWMutex
	message string
	shown   bool
}

// NewDisplay creates a blank display.
func NewDisplay() *Display {
	return new(Display)
}

// OnEvent applies display notifications and passes everything on.
func (d *Display) OnEvent(ctx context.Context, ev event.Event) event.Propagation {
	switch ev.Type {
	case event.TypeDisplayOn:
		d.mu.Lock()
		d.message, d.shown = ev.Message, true
		d.mu.Unlock()

		logger.WarnKV(ctx, "ALARM", "message", ev.Message)
	case event.TypeDisplayOff:
		d.mu.Lock()
		d.message, d.shown = "", false
		d.mu.Unlock()

		logger.Info(ctx, "Alarm display cleared")
	default:
	}

	return event.Propagate
}

// Message returns the alarm line and whether one is shown.
func (d *Display) Message() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.message, d.shown
}
