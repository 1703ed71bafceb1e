package window

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

// Cursor is a system pointer shape.
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorHand
	CursorMove
)

var systemCursors = map[Cursor]sdl.SystemCursor{
	CursorArrow: sdl.SYSTEM_CURSOR_ARROW,
	CursorHand:  sdl.SYSTEM_CURSOR_HAND,
	CursorMove:  sdl.SYSTEM_CURSOR_SIZEALL,
}

// SetCursor changes the pointer shape. System cursors are created on first
// use and kept until Close.
func (w *Window) SetCursor(c Cursor) {
	if c == w.cursor {
		return
	}
	cur, ok := w.cursors[c]
	if !ok {
		cur = sdl.CreateSystemCursor(systemCursors[c])
		if cur == nil {
			w.log.Debug("system cursor unavailable", zap.Int("cursor", int(c)))
			return
		}
		w.cursors[c] = cur
	}
	sdl.SetCursor(cur)
	w.cursor = c
}
