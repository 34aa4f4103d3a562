package event

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/vent-alarm/internal/logger"
)

// Bus queues events and dispatches them to handlers in order.
type Bus struct {
	// mu protects backlog and handlers.
	mu       sync.Mutex
	backlog  []Event
	handlers []Handler
	// wake is signalled when the backlog goes from empty to non-empty.
	wake chan struct{}
	now  func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		wake: make(chan struct{}, 1),
		now:  time.Now,
	}
}

// Subscribe appends h to the handler chain. Handlers subscribed first see
// events first.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, h)
}

// Post queues ev. It is safe to call from any goroutine, including from a
// handler during dispatch: such events are delivered after the current one.
func (b *Bus) Post(ev Event) {
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	b.mu.Lock()
	b.backlog = append(b.backlog, ev)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.backlog)
}

// Run dispatches events until ctx is canceled. Only one goroutine may run
// the bus.
func (b *Bus) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "bus")

	logger.Info(ctx, "Event bus started")

	for {
		b.Dispatch(ctx)

		select {
		case <-ctx.Done():
			logger.InfoKV(ctx, "Event bus stopped", "pending", b.Pending())
			return nil
		case <-b.wake:
		}
	}
}

// Dispatch delivers queued events, including the ones posted while it runs,
// and returns how many were delivered. Run calls it; tests call it directly
// to process events on their own goroutine.
func (b *Bus) Dispatch(ctx context.Context) int {
	delivered := 0

	for {
		ev, ok := b.next()
		if !ok {
			return delivered
		}

		b.deliver(ctx, ev)
		delivered++
	}
}

func (b *Bus) next() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.backlog) == 0 {
		return Event{}, false
	}

	ev := b.backlog[0]
	b.backlog[0] = Event{}
	b.backlog = b.backlog[1:]

	return ev, true
}

func (b *Bus) deliver(ctx context.Context, ev Event) {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()

	logger.DebugKV(ctx, "Dispatching event", "type", ev.Type, "origin", ev.Origin)

	for _, h := range handlers {
		if callHandler(ctx, h, ev) == Stop {
			return
		}
	}
}

// callHandler shields the dispatch loop from a panicking handler: the event
// is logged and the chain continues.
func callHandler(ctx context.Context, h Handler, ev Event) (p Propagation) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Event handler panicked", "type", ev.Type, "panic", r)

			p = Propagate
		}
	}()

	return h.OnEvent(ctx, ev)
}
