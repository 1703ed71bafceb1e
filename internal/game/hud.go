package game

import (
	"fmt"

	"github.com/Faultbox/midgard-gallery/internal/app"
	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/engine/ui2d"
	"github.com/Faultbox/midgard-gallery/internal/viewer"
)

const (
	textScale    = 1.5
	headingScale = 2
	linePad      = 4
)

func drawHUD(o *ui2d.Renderer, a *app.App, w, h float32) {
	if a.Viewer().IsOpen() {
		return
	}

	if a.Controller().Locked() {
		cx, cy := w/2, h/2
		o.DrawRect(cx-8, cy-1, 16, 2, ui2d.ColorCrosshair)
		o.DrawRect(cx-1, cy-8, 2, 16, ui2d.ColorCrosshair)
	} else {
		hint := "Click to walk - WASD to move - click a painting for details"
		tw, th := o.MeasureText(hint, textScale)
		o.DrawRect((w-tw)/2-10, h-th-34, tw+20, th+12, ui2d.ColorBackdrop)
		o.DrawText((w-tw)/2, h-th-28, hint, textScale, ui2d.ColorText)
	}

	if id := a.Hovered(); id != "" {
		if art, ok := a.Gallery().Lookup(id); ok {
			label := art.Entry.Title
			if art.Entry.Author != "" {
				label += " - " + art.Entry.Author
			}
			tw, th := o.MeasureText(label, textScale)
			o.DrawRect((w-tw)/2-10, 24, tw+20, th+12, ui2d.ColorBackdrop)
			o.DrawText((w-tw)/2, 30, label, textScale, ui2d.ColorText)
		}
	}
}

// roomTextureFunc finds the texture already showing for an entry in the room.
type roomTextureFunc func(catalog.Entry) (id uint32, w, h int)

func drawModal(o *ui2d.Renderer, a *app.App, room roomTextureFunc, w, h float32) {
	v := a.Viewer()
	l := v.Layout()

	o.DrawRect(0, 0, w, h, ui2d.ColorBackdrop)
	o.DrawPanel(l.Card.X, l.Card.Y, l.Card.W, l.Card.H, ui2d.ColorCard, ui2d.ColorCardBorder)
	o.DrawRect(l.Image.X, l.Image.Y, l.Image.W, l.Image.H, ui2d.ColorImageWell)

	texID, tw, th := room(v.Entry())
	if tex := v.Texture(); tex != nil {
		texID, tw, th = tex.ID, tex.Width, tex.Height
	}
	if texID != 0 {
		img := v.ImageRect(tw, th)
		o.PushClip(ui2d.Rect(l.Image))
		o.DrawImage(texID, img.X, img.Y, img.W, img.H)
		o.PopClip()
	} else {
		drawCentred(o, l.Image, "Loading...", textScale, ui2d.ColorTextDim)
	}

	drawInfo(o, v, l.Info)

	cx, cy := a.Cursor()
	zoom := v.Zoom()
	buttons := []struct {
		c       viewer.Control
		label   string
		enabled bool
	}{
		{viewer.ControlZoomIn, "+", zoom.Scale() < zoom.MaxZoom},
		{viewer.ControlZoomOut, "-", zoom.Scale() > 1},
		{viewer.ControlZoomReset, "1:1", zoom.Scale() != 1},
		{viewer.ControlClose, "Close", true},
	}
	for _, b := range buttons {
		r := l.Rect(b.c)
		bg, fg := ui2d.ColorButtonNormal, ui2d.ColorText
		switch {
		case !b.enabled:
			bg, fg = bg.WithAlpha(0.5), ui2d.ColorTextDim
		case r.Contains(float32(cx), float32(cy)):
			bg = bg.Lighten(0.15)
		}
		o.DrawPanel(r.X, r.Y, r.W, r.H, bg, ui2d.ColorCardBorder.Darken(0.2))
		if v.Focus() == b.c {
			o.DrawRectOutline(r.X-2, r.Y-2, r.W+4, r.H+4, 2, ui2d.ColorFocusRing)
		}
		drawCentred(o, r, b.label, textScale, fg)
	}

	pct := fmt.Sprintf("%d%%", int(zoom.Scale()*100+0.5))
	o.DrawText(l.Image.X+12, l.Image.Y+l.Image.H-24, pct, textScale, ui2d.ColorTextDim)
}

func drawInfo(o *ui2d.Renderer, v *viewer.Viewer, r viewer.Rect) {
	const pad = 20
	gw, gh := o.Font().GlyphSize()
	x, y := r.X+pad, r.Y+pad
	bottom := r.Y + r.H - 60

	for _, line := range v.InfoLines(int((r.W - 2*pad) / (float32(gw) * textScale))) {
		scale := float32(textScale)
		color := ui2d.ColorText
		if line.Heading {
			scale = headingScale
		}
		if line.Dim {
			color = ui2d.ColorTextDim
		}
		lh := float32(gh)*scale + linePad
		if y+lh > bottom {
			o.DrawText(x, y, "...", scale, ui2d.ColorTextDim)
			return
		}
		o.DrawText(x, y, line.Text, scale, color)
		y += lh
	}
}

func drawCentred(o *ui2d.Renderer, r viewer.Rect, text string, scale float32, c ui2d.Color) {
	tw, th := o.MeasureText(text, scale)
	o.DrawText(r.X+(r.W-tw)/2, r.Y+(r.H-th)/2, text, scale, c)
}
