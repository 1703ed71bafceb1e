// Package interaction holds the single authoritative interaction mode.
//
// Every consumer (keyboard handling, pointer lock, per-frame movement,
// picking) queries the same Gate. Nothing keeps its own copy of the flag.
package interaction

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// Mode is the global interaction mode.
type Mode int

const (
	// Walking accepts movement keys and pointer lock.
	Walking Mode = iota
	// ModalOpen routes input to the detail viewer.
	ModalOpen
)

func (m Mode) String() string {
	switch m {
	case Walking:
		return "walking"
	case ModalOpen:
		return "modal"
	default:
		return "unknown"
	}
}

// Gate owns the interaction mode and announces transitions on the bus.
type Gate struct {
	mode      Mode
	bus       *events.Bus
	listeners []*listener
	log       *zap.Logger
}

type listener struct {
	fn     func(Mode)
	active bool
}

// NewGate creates a gate in Walking mode. bus may be nil.
func NewGate(bus *events.Bus, log *zap.Logger) *Gate {
	return &Gate{
		mode: Walking,
		bus:  bus,
		log:  logger.Or(log, "gate"),
	}
}

// Mode returns the current mode.
func (g *Gate) Mode() Mode {
	return g.mode
}

// IsModalOpen reports whether the detail view owns input.
func (g *Gate) IsModalOpen() bool {
	return g.mode == ModalOpen
}

// Open switches to ModalOpen. It returns false when the modal was already open.
// payload is forwarded with the modal-open event.
func (g *Gate) Open(payload any) bool {
	if g.mode == ModalOpen {
		return false
	}
	g.transition(ModalOpen, events.TopicModalOpen, payload)
	return true
}

// Close switches back to Walking. It returns false when already walking.
func (g *Gate) Close() bool {
	if g.mode == Walking {
		return false
	}
	g.transition(Walking, events.TopicModalClose, nil)
	return true
}

// transition flips the mode before anyone is told, so handlers reacting to
// the notification already observe the new mode.
func (g *Gate) transition(to Mode, topic events.Topic, payload any) {
	from := g.mode
	g.mode = to
	g.log.Debug("mode change", zap.Stringer("from", from), zap.Stringer("to", to))

	for _, l := range append([]*listener(nil), g.listeners...) {
		if l.active {
			l.fn(to)
		}
	}
	if g.bus != nil {
		g.bus.Emit(topic, payload)
	}
}

// OnChange registers fn for every mode transition and returns a function
// that removes it.
func (g *Gate) OnChange(fn func(Mode)) func() {
	l := &listener{fn: fn, active: true}
	g.listeners = append(g.listeners, l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		for i, other := range g.listeners {
			if other == l {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				break
			}
		}
	}
}
