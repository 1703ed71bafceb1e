// Package viewer implements the artwork detail view: a modal with the full
// image, its description, zoom and pan.
package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/engine/input"
	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/interaction"
	"github.com/Faultbox/midgard-gallery/internal/lod"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// DetailSource creates the texture cache for one viewing session.
type DetailSource func(entry catalog.Entry) (*lod.Cache, error)

// Options configures a Viewer.
type Options struct {
	Bus       *events.Bus
	Gate      *interaction.Gate
	MaxZoom   float32
	ZoomStep  float32
	WheelStep float32
	Layout    Layout

	// Detail is optional. When set, the viewer loads DetailTier through the
	// cache it returns and disposes the cache on close.
	Detail     DetailSource
	DetailTier lod.Tier

	Logger *zap.Logger
}

// Viewer is the detail modal. It only listens for input while open.
type Viewer struct {
	bus    *events.Bus
	gate   *interaction.Gate
	zoom   *ZoomPan
	layout Layout
	log    *zap.Logger

	detailSrc  DetailSource
	detailTier lod.Tier
	detail     *lod.Cache
	texture    *lod.Texture

	open   bool
	entry  catalog.Entry
	focus  Control
	unsubs []func()
}

// New creates a closed viewer.
func New(opts Options) *Viewer {
	return &Viewer{
		bus:        opts.Bus,
		gate:       opts.Gate,
		zoom:       NewZoomPan(opts.MaxZoom, opts.ZoomStep, opts.WheelStep),
		layout:     opts.Layout,
		log:        logger.Or(opts.Logger, "viewer"),
		detailSrc:  opts.Detail,
		detailTier: opts.DetailTier,
	}
}

// IsOpen reports whether the modal is showing.
func (v *Viewer) IsOpen() bool { return v.open }

// Entry returns the artwork on display.
func (v *Viewer) Entry() catalog.Entry { return v.entry }

// Focus returns the focused control.
func (v *Viewer) Focus() Control { return v.focus }

// Zoom returns the zoom and pan state.
func (v *Viewer) Zoom() *ZoomPan { return v.zoom }

// Layout returns the current layout.
func (v *Viewer) Layout() Layout { return v.layout }

// SetLayout updates the screen rectangles, typically after a resize.
func (v *Viewer) SetLayout(l Layout) { v.layout = l }

// HitTest returns the modal element at (x, y).
func (v *Viewer) HitTest(x, y float32) Hit { return v.layout.HitTest(x, y) }

// Texture returns the detail texture once it has loaded.
func (v *Viewer) Texture() *lod.Texture { return v.texture }

// Open shows entry. It returns false when a modal is already open.
func (v *Viewer) Open(entry catalog.Entry) bool {
	if v.open || v.gate.IsModalOpen() {
		v.log.Debug("open ignored, modal already open", zap.String("artwork", entry.Key()))
		return false
	}

	v.open = true
	v.entry = entry
	v.focus = ControlNone
	v.zoom.Reset()
	v.subscribe()
	v.loadDetail(entry)

	v.log.Info("detail opened", zap.String("artwork", entry.Key()), zap.String("title", entry.Title))
	v.gate.Open(entry.Key())
	return true
}

// Close hides the modal. It returns false when nothing was open.
func (v *Viewer) Close() bool {
	if !v.open {
		return false
	}

	for _, u := range v.unsubs {
		u()
	}
	v.unsubs = nil
	v.zoom.Reset()
	v.focus = ControlNone

	if v.detail != nil {
		v.detail.Dispose()
		v.detail = nil
	}
	v.texture = nil
	v.open = false

	v.log.Info("detail closed", zap.String("artwork", v.entry.Key()))
	v.gate.Close()
	return true
}

func (v *Viewer) loadDetail(entry catalog.Entry) {
	if v.detailSrc == nil {
		return
	}
	cache, err := v.detailSrc(entry)
	if err != nil {
		v.log.Warn("detail texture unavailable", zap.String("artwork", entry.Key()), zap.Error(err))
		return
	}
	v.detail = cache
	cache.Request(v.detailTier).Then(func(tex *lod.Texture, err error) {
		// The session may have ended before the load finished.
		if v.detail != cache {
			return
		}
		if err != nil {
			v.log.Warn("detail texture failed", zap.String("artwork", entry.Key()), zap.Error(err))
			return
		}
		v.texture = tex
		cache.Activate(tex.Tier)
	})
}

func (v *Viewer) subscribe() {
	v.unsubs = append(v.unsubs,
		v.bus.Subscribe(events.TopicWheel, v.onWheel),
		v.bus.Subscribe(events.TopicPointerDown, v.onPointerDown),
		v.bus.Subscribe(events.TopicPointerMove, v.onPointerMove),
		v.bus.Subscribe(events.TopicPointerUp, v.onPointerUp),
		v.bus.Subscribe(events.TopicKeyDown, v.onKeyDown),
		v.bus.Subscribe(events.TopicClick, v.onClick),
	)
}

func pointer(e *events.Event) (float32, float32) {
	return float32(e.Input.MouseX), float32(e.Input.MouseY)
}

func (v *Viewer) onWheel(e *events.Event) {
	x, y := pointer(e)
	if !v.layout.Image.Contains(x, y) {
		return
	}
	e.PreventDefault()
	v.zoom.Wheel(e.Input.WheelY)
}

func (v *Viewer) onPointerDown(e *events.Event) {
	if e.Input.Button != input.ButtonLeft {
		return
	}
	x, y := pointer(e)
	if !v.layout.Image.Contains(x, y) || v.layout.ControlAt(x, y) != ControlNone {
		return
	}
	if v.zoom.PointerDown(x, y) {
		e.PreventDefault()
	}
}

func (v *Viewer) onPointerMove(e *events.Event) {
	x, y := pointer(e)
	v.zoom.PointerMove(x, y)
}

func (v *Viewer) onPointerUp(*events.Event) {
	v.zoom.PointerUp()
}

func (v *Viewer) onKeyDown(e *events.Event) {
	switch e.Input.Key {
	case input.KeyEscape:
		v.Close()
	case input.KeyPlus:
		v.zoom.ZoomIn()
	case input.KeyMinus:
		v.zoom.ZoomOut()
	case input.Key0:
		v.zoom.Reset()
	case input.KeyTab:
		v.cycleFocus(e.Input.Shift)
	case input.KeyEnter:
		v.activate(v.focus)
	default:
		return
	}
	e.PreventDefault()
	e.StopPropagation()
}

func (v *Viewer) onClick(e *events.Event) {
	x, y := pointer(e)
	if c := v.layout.ControlAt(x, y); c != ControlNone {
		v.focus = c
		v.activate(c)
		e.StopPropagation()
		return
	}
	if !v.layout.Card.Contains(x, y) {
		v.Close()
		e.StopPropagation()
	}
}

func (v *Viewer) cycleFocus(reverse bool) {
	idx := -1
	for i, c := range focusOrder {
		if c == v.focus {
			idx = i
		}
	}
	n := len(focusOrder)
	switch {
	case idx < 0 && reverse:
		idx = n - 1
	case idx < 0:
		idx = 0
	case reverse:
		idx = (idx + n - 1) % n
	default:
		idx = (idx + 1) % n
	}
	v.focus = focusOrder[idx]
}

func (v *Viewer) activate(c Control) {
	switch c {
	case ControlZoomIn:
		v.zoom.ZoomIn()
	case ControlZoomOut:
		v.zoom.ZoomOut()
	case ControlZoomReset:
		v.zoom.Reset()
	case ControlClose:
		v.Close()
	}
}

// ImageRect returns where an image of w x h pixels is drawn: fitted to the
// image area, then zoomed and panned.
func (v *Viewer) ImageRect(w, h int) Rect {
	s, dx, dy := v.zoom.Transform()
	return v.layout.Image.Fit(w, h).Transformed(s, dx, dy)
}

// InfoLines lays out the open entry's text in lines of at most cols
// characters.
func (v *Viewer) InfoLines(cols int) []InfoLine {
	return InfoLines(v.entry, cols)
}
