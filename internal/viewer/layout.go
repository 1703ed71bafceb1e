package viewer

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Control is a focusable element of the detail view.
type Control int

const (
	ControlNone Control = iota
	ControlZoomIn
	ControlZoomOut
	ControlZoomReset
	ControlClose
)

// focusOrder is the Tab order of the modal controls.
var focusOrder = []Control{ControlZoomIn, ControlZoomOut, ControlZoomReset, ControlClose}

func (c Control) String() string {
	switch c {
	case ControlZoomIn:
		return "zoom-in"
	case ControlZoomOut:
		return "zoom-out"
	case ControlZoomReset:
		return "zoom-reset"
	case ControlClose:
		return "close"
	default:
		return "none"
	}
}

// Layout places the detail view on screen. Everything outside Card is
// backdrop.
type Layout struct {
	Card      Rect
	Image     Rect
	Info      Rect
	ZoomIn    Rect
	ZoomOut   Rect
	ZoomReset Rect
	Close     Rect
}

// Rect returns the rectangle of control c.
func (l Layout) Rect(c Control) Rect {
	switch c {
	case ControlZoomIn:
		return l.ZoomIn
	case ControlZoomOut:
		return l.ZoomOut
	case ControlZoomReset:
		return l.ZoomReset
	case ControlClose:
		return l.Close
	default:
		return Rect{}
	}
}

// ControlAt returns the control under (x, y).
func (l Layout) ControlAt(x, y float32) Control {
	for _, c := range focusOrder {
		if l.Rect(c).Contains(x, y) {
			return c
		}
	}
	return ControlNone
}

// Region is the part of the modal under a point.
type Region int

const (
	RegionBackdrop Region = iota
	RegionCard
	RegionImage
	RegionInfo
)

// Hit identifies the element under a point. Two points hit the same element
// when their Hits are equal.
type Hit struct {
	Region  Region
	Control Control
}

// HitTest returns the innermost element at (x, y).
func (l Layout) HitTest(x, y float32) Hit {
	h := Hit{Control: l.ControlAt(x, y)}
	switch {
	case l.Image.Contains(x, y):
		h.Region = RegionImage
	case l.Info.Contains(x, y):
		h.Region = RegionInfo
	case l.Card.Contains(x, y):
		h.Region = RegionCard
	}
	return h
}

// DefaultLayout centres a two-column card in a width x height window: the
// image on the left, the description on the right, zoom buttons in the top
// right corner of the image and the close button at the bottom of the text.
func DefaultLayout(width, height int) Layout {
	const (
		pad    = 16
		button = 36
		gap    = 8
	)
	w, h := float32(width), float32(height)
	cardW := min(w-2*pad, 1024)
	cardH := min(h-2*pad, 0.8*h)
	card := Rect{X: (w - cardW) / 2, Y: (h - cardH) / 2, W: cardW, H: cardH}

	image := Rect{X: card.X, Y: card.Y, W: card.W / 2, H: card.H}
	info := Rect{X: card.X + card.W/2, Y: card.Y, W: card.W / 2, H: card.H}

	top := image.Y + pad
	right := image.X + image.W - pad
	return Layout{
		Card:      card,
		Image:     image,
		Info:      info,
		ZoomReset: Rect{X: right - button, Y: top, W: button, H: button},
		ZoomOut:   Rect{X: right - 2*button - gap, Y: top, W: button, H: button},
		ZoomIn:    Rect{X: right - 3*button - 2*gap, Y: top, W: button, H: button},
		Close:     Rect{X: info.X + info.W - pad - 96, Y: info.Y + info.H - pad - button, W: 96, H: button},
	}
}

// Fit returns the largest rectangle with aspect w:h centred in r.
func (r Rect) Fit(w, h int) Rect {
	if w <= 0 || h <= 0 || r.W <= 0 || r.H <= 0 {
		return r
	}
	s := min(r.W/float32(w), r.H/float32(h))
	fw, fh := float32(w)*s, float32(h)*s
	return Rect{X: r.X + (r.W-fw)/2, Y: r.Y + (r.H-fh)/2, W: fw, H: fh}
}

// Transformed scales r about its centre and then offsets it.
func (r Rect) Transformed(scale, dx, dy float32) Rect {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	w, h := r.W*scale, r.H*scale
	return Rect{X: cx - w/2 + dx, Y: cy - h/2 + dy, W: w, H: h}
}
