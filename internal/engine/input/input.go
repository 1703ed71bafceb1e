// Package input defines host-independent input events.
//
// The window package translates SDL events into these types so the rest of
// the viewer never imports SDL.
package input

// EventType identifies the kind of input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventPointerLockLost // the host released the pointer on its own
)

// Key is a physical key the viewer cares about.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyEscape
	KeyTab
	KeyEnter
	KeyPlus
	KeyMinus
	Key0
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeyW:      "W",
	KeyA:      "A",
	KeyS:      "S",
	KeyD:      "D",
	KeyEscape: "Escape",
	KeyTab:    "Tab",
	KeyEnter:  "Enter",
	KeyPlus:   "+",
	KeyMinus:  "-",
	Key0:      "0",
	KeyF11:    "F11",
	KeyF12:    "F12",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsMovement reports whether k is one of the W/A/S/D movement keys.
func (k Key) IsMovement() bool {
	return k == KeyW || k == KeyA || k == KeyS || k == KeyD
}

// Mouse buttons.
const (
	ButtonLeft   uint8 = 1
	ButtonMiddle uint8 = 2
	ButtonRight  uint8 = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Shift  bool
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int // relative motion, meaningful under pointer lock
	RelY   int
	Button uint8
	WheelY float32 // positive scrolls away from the user
}

// Queue accumulates the events of one frame.
type Queue struct {
	events []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 16)}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Reset clears the queue for the next frame.
func (q *Queue) Reset() {
	q.events = q.events[:0]
}

// Events returns the events collected since the last Reset.
func (q *Queue) Events() []Event {
	return q.events
}

// Quit reports whether a quit event was collected.
func (q *Queue) Quit() bool {
	for _, e := range q.events {
		if e.Type == EventQuit {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (q *Queue) IsKeyPressed(k Key) bool {
	for _, e := range q.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}
