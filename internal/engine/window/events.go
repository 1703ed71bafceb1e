package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-gallery/internal/engine/input"
)

var scancodes = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_W:        input.KeyW,
	sdl.SCANCODE_A:        input.KeyA,
	sdl.SCANCODE_S:        input.KeyS,
	sdl.SCANCODE_D:        input.KeyD,
	sdl.SCANCODE_UP:       input.KeyW,
	sdl.SCANCODE_LEFT:     input.KeyA,
	sdl.SCANCODE_DOWN:     input.KeyS,
	sdl.SCANCODE_RIGHT:    input.KeyD,
	sdl.SCANCODE_ESCAPE:   input.KeyEscape,
	sdl.SCANCODE_TAB:      input.KeyTab,
	sdl.SCANCODE_RETURN:   input.KeyEnter,
	sdl.SCANCODE_KP_ENTER: input.KeyEnter,
	sdl.SCANCODE_EQUALS:   input.KeyPlus,
	sdl.SCANCODE_KP_PLUS:  input.KeyPlus,
	sdl.SCANCODE_MINUS:    input.KeyMinus,
	sdl.SCANCODE_KP_MINUS: input.KeyMinus,
	sdl.SCANCODE_0:        input.Key0,
	sdl.SCANCODE_KP_0:     input.Key0,
	sdl.SCANCODE_F11:      input.KeyF11,
	sdl.SCANCODE_F12:      input.KeyF12,
}

// PollEvents drains the SDL queue into q. Losing focus while the pointer is
// captured releases it and is reported as EventPointerLockLost.
func (w *Window) PollEvents(q *input.Queue) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			q.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				q.Push(input.Event{Type: input.EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)})
			case sdl.WINDOWEVENT_FOCUS_LOST:
				if w.locked {
					_ = w.Unlock()
					q.Push(input.Event{Type: input.EventPointerLockLost})
				}
			}

		case *sdl.KeyboardEvent:
			key, ok := scancodes[e.Keysym.Scancode]
			if !ok {
				continue
			}
			shift := e.Keysym.Mod&sdl.KMOD_SHIFT != 0
			if key == input.KeyPlus && e.Keysym.Scancode == sdl.SCANCODE_EQUALS && !shift {
				// '=' shares the key with '+'; accept both.
				shift = true
			}
			ev := input.Event{Key: key, Shift: shift}
			if e.Type == sdl.KEYDOWN {
				ev.Type = input.EventKeyDown
			} else {
				ev.Type = input.EventKeyUp
			}
			q.Push(ev)

		case *sdl.MouseMotionEvent:
			q.Push(input.Event{
				Type:   input.EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				RelX:   int(e.XRel),
				RelY:   int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := input.Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = input.EventMouseDown
			} else {
				ev.Type = input.EventMouseUp
			}
			q.Push(ev)

		case *sdl.MouseWheelEvent:
			dy := e.PreciseY
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			x, y, _ := sdl.GetMouseState()
			q.Push(input.Event{Type: input.EventMouseWheel, WheelY: dy, MouseX: int(x), MouseY: int(y)})
		}
	}
}
