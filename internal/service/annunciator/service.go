package annunciator

import (
	"context"
	"sync"

	"github.com/oshokin/vent-alarm/internal/domain/alarm"
	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/hal"
	"github.com/oshokin/vent-alarm/internal/logger"
)

// originSimulation marks alarms raised by simulated keys.
const originSimulation = "simulation"

// Service adapts the bus to the Controller. It is the only writer of the
// controller state; Snapshot may be called from any goroutine.
type Service struct {
	// mu serializes controller access between the bus and snapshot readers.
	mu         sync.RWMutex
	controller *Controller
	poster     event.Poster
	// simulated maps keys that raise an alarm instead of muting.
	simulated map[event.Key]alarm.ID
}

// Option configures a Service.
type Option func(*Service)

// WithSimulatedKeys makes the listed keys raise alarms instead of muting,
// for bench testing without sensors. The mute key is never remapped.
func WithSimulatedKeys(keys map[event.Key]alarm.ID) Option {
	return func(s *Service) {
		for k, id := range keys {
			if _, err := event.SimulatedKey(string(k)); err != nil {
				continue
			}

			s.simulated[k] = id
		}
	}
}

// New builds the controller for catalog and resets it, which puts the
// beeper and display into a known state the way a boot does.
func New(ctx context.Context, catalog *alarm.Catalog, beeper hal.Beeper, poster event.Poster, opts ...Option) *Service {
	s := &Service{
		poster:    poster,
		simulated: make(map[event.Key]alarm.ID),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.controller = NewController(catalog, beeper, busNotifier{poster: poster})
	s.controller.ResetAll(logger.WithName(ctx, "annunciator"))

	return s
}

// OnEvent applies alarm, key and reset events. Every event is propagated.
func (s *Service) OnEvent(ctx context.Context, ev event.Event) event.Propagation {
	ctx = logger.WithName(ctx, "annunciator")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case event.TypeAlarmRaise:
		//nolint:errcheck // Raise already logged the dropped event.
		_ = s.controller.Raise(ctx, alarm.ID(ev.AlarmID))
	case event.TypeKeyPress:
		if id, ok := s.simulated[ev.Key]; ok {
			logger.InfoKV(ctx, "Simulated alarm key pressed", "key", ev.Key, "id", int(id))
			s.poster.Post(event.AlarmRaise(int(id)).WithOrigin(originSimulation))

			break
		}

		if !s.controller.MuteActive(ctx) {
			logger.DebugKV(ctx, "Key pressed with no active alarm", "key", ev.Key)
		}
	case event.TypeKeyRelease:
		// Mute acts on press only.
	case event.TypeReset:
		logger.InfoKV(ctx, "Reset requested", "origin", ev.Origin)
		s.controller.ResetAll(ctx)
	default:
	}

	return event.Propagate
}

// ResetAll resets the controller outside of the bus, e.g. from a
// diagnostic hook.
func (s *Service) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.ResetAll(logger.WithName(ctx, "annunciator"))
}

// Tick forwards the periodic hook.
func (s *Service) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Tick(ctx)
}

// Snapshot returns a copy of the controller state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.controller.Snapshot()
}

// busNotifier posts controller display transitions to the bus.
type busNotifier struct {
	poster event.Poster
}

// DisplayOn posts a display-on notification.
func (n busNotifier) DisplayOn(_ context.Context, message string) {
	n.poster.Post(event.DisplayOn(message).WithOrigin("annunciator"))
}

// DisplayOff posts a display-off notification.
func (n busNotifier) DisplayOff(context.Context) {
	n.poster.Post(event.DisplayOff().WithOrigin("annunciator"))
}
