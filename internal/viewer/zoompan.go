package viewer

// Cursor is the pointer shape over the detail image.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	default:
		return "default"
	}
}

// ZoomPan is the scale and translation applied to the detail image.
//
// Scale stays within [1, MaxZoom]. Translation is only possible while zoomed
// in and is zeroed whenever the scale returns to 1.
type ZoomPan struct {
	MaxZoom   float32
	Step      float32 // buttons and keys
	WheelStep float32

	scale    float32
	x, y     float32
	dragging bool
	startX   float32
	startY   float32
}

// NewZoomPan creates an unzoomed state.
func NewZoomPan(maxZoom, step, wheelStep float32) *ZoomPan {
	if maxZoom < 1 {
		maxZoom = 1
	}
	return &ZoomPan{MaxZoom: maxZoom, Step: step, WheelStep: wheelStep, scale: 1}
}

// Scale returns the current zoom factor.
func (z *ZoomPan) Scale() float32 { return z.scale }

// Translation returns the pan offset in pixels.
func (z *ZoomPan) Translation() (x, y float32) { return z.x, z.y }

// Dragging reports whether a pan is in progress.
func (z *ZoomPan) Dragging() bool { return z.dragging }

// Transform returns scale and translation together.
func (z *ZoomPan) Transform() (scale, x, y float32) {
	return z.scale, z.x, z.y
}

// ZoomIn increases the scale by one step.
func (z *ZoomPan) ZoomIn() { z.setScale(z.scale + z.Step) }

// ZoomOut decreases the scale by one step.
func (z *ZoomPan) ZoomOut() { z.setScale(z.scale - z.Step) }

// Reset returns to scale 1 and ends any drag.
func (z *ZoomPan) Reset() {
	z.dragging = false
	z.setScale(1)
}

// Wheel zooms in for positive deltaY (scrolling away from the user) and out
// for negative.
func (z *ZoomPan) Wheel(deltaY float32) {
	switch {
	case deltaY > 0:
		z.setScale(z.scale + z.WheelStep)
	case deltaY < 0:
		z.setScale(z.scale - z.WheelStep)
	}
}

func (z *ZoomPan) setScale(s float32) {
	if s < 1 {
		s = 1
	}
	if s > z.MaxZoom {
		s = z.MaxZoom
	}
	z.scale = s
	if z.scale == 1 {
		z.x, z.y = 0, 0
		z.dragging = false
	}
}

// PointerDown starts a pan at (x, y). It is ignored at scale 1.
func (z *ZoomPan) PointerDown(x, y float32) bool {
	if z.scale <= 1 {
		return false
	}
	z.dragging = true
	z.startX = x - z.x
	z.startY = y - z.y
	return true
}

// PointerMove pans while dragging.
func (z *ZoomPan) PointerMove(x, y float32) bool {
	if !z.dragging || z.scale <= 1 {
		return false
	}
	z.x = x - z.startX
	z.y = y - z.startY
	return true
}

// PointerUp ends a pan.
func (z *ZoomPan) PointerUp() {
	z.dragging = false
}

// Cursor returns the pointer shape for the current state.
func (z *ZoomPan) Cursor() Cursor {
	switch {
	case z.dragging:
		return CursorGrabbing
	case z.scale > 1:
		return CursorGrab
	default:
		return CursorDefault
	}
}
