package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oshokin/vent-alarm/internal/logger"
)

// Beeper drives the audible alarm output.
type Beeper interface {
	SetBeeper(ctx context.Context, on bool)
}

// Beeper backends accepted by NewBeeper.
const (
	BeeperLog      = "log"
	BeeperTerminal = "terminal"
)

// ErrUnknownBeeper is returned for an unsupported backend name.
var ErrUnknownBeeper = errors.New("unknown beeper backend")

// NewBeeper returns the backend named kind. The terminal backend rings the
// bell on w.
//
//nolint:ireturn // The backend is chosen at runtime.
func NewBeeper(kind string, w io.Writer) (Beeper, error) {
	switch kind {
	case BeeperLog, "":
		return new(LogBeeper), nil
	case BeeperTerminal:
		return NewTerminalBeeper(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBeeper, kind)
	}
}

// LogBeeper reports beeper transitions in the log only.
type LogBeeper struct{}

// SetBeeper logs the new output state.
func (LogBeeper) SetBeeper(ctx context.Context, on bool) {
	logger.InfoKV(ctx, "Beeper switched", "on", on)
}

// bell is the ASCII BEL control character.
const bell = "\a"

// TerminalBeeper rings the terminal bell each time the beeper turns on.
type TerminalBeeper struct {
	mu sync.Mutex
	w  io.Writer
	on bool
}

// NewTerminalBeeper creates a beeper writing to w.
func NewTerminalBeeper(w io.Writer) *TerminalBeeper {
	return &TerminalBeeper{w: w}
}

// SetBeeper rings on an off-to-on transition. Write errors are logged; the
// caller has no way to recover from a broken output anyway.
func (b *TerminalBeeper) SetBeeper(ctx context.Context, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if on && !b.on {
		if _, err := io.WriteString(b.w, bell); err != nil {
			logger.ErrorKV(ctx, "Failed to ring terminal bell", "error", err)
		}
	}

	b.on = on
}

// On reports the last requested state.
func (b *TerminalBeeper) On() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.on
}
