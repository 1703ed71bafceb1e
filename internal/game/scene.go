package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gallery/internal/engine/picking"
	"github.com/Faultbox/midgard-gallery/internal/engine/renderer"
	"github.com/Faultbox/midgard-gallery/internal/gallery"
)

var (
	colorFloor    = mgl32.Vec4{0.32, 0.26, 0.2, 1}
	colorCeiling  = mgl32.Vec4{0.85, 0.84, 0.8, 1}
	colorWall     = mgl32.Vec4{0.78, 0.75, 0.7, 1}
	colorColumn   = mgl32.Vec4{0.9, 0.88, 0.84, 1}
	colorFrame    = mgl32.Vec4{0.35, 0.25, 0.12, 1}
	colorCanvas   = mgl32.Vec4{0.25, 0.25, 0.25, 1}
	colorPanel    = mgl32.Vec4{0.95, 0.93, 0.88, 1}
	hoverStrength = float32(0.18)
)

// boxModel maps the unit cube onto an axis-aligned box.
func boxModel(b picking.AABB) mgl32.Mat4 {
	c := b.Center()
	s := b.Max.Sub(b.Min)
	return mgl32.Translate3D(c.X(), c.Y(), c.Z()).Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// placed builds a model matrix at pos, turned to face the artwork's normal,
// scaled to size in local (width, height, depth).
func placed(pos mgl32.Vec3, rotY float32, size mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(mgl32.HomogRotate3DY(rotY)).
		Mul4(mgl32.Scale3D(size.X(), size.Y(), size.Z()))
}

func drawRoom(r *renderer.Renderer, g *gallery.Gallery, hovered string) {
	l := g.Layout()
	r.DrawBox(boxModel(picking.NewAABB(
		mgl32.Vec3{-l.HalfWidth, -0.1, -l.Length / 2},
		mgl32.Vec3{l.HalfWidth, 0, l.Length / 2},
	)), renderer.Style{Color: colorFloor})
	r.DrawBox(boxModel(picking.NewAABB(
		mgl32.Vec3{-l.HalfWidth, l.WallHeight, -l.Length / 2},
		mgl32.Vec3{l.HalfWidth, l.WallHeight + 0.1, l.Length / 2},
	)), renderer.Style{Color: colorCeiling})

	for _, w := range g.Walls() {
		r.DrawBox(boxModel(w), renderer.Style{Color: colorWall})
	}
	for _, c := range g.Columns() {
		r.DrawBox(boxModel(c), renderer.Style{Color: colorColumn})
	}

	for _, a := range g.Artworks() {
		drawArtwork(r, a, a.ID() == hovered)
	}
}

func drawArtwork(r *renderer.Renderer, a *gallery.Artwork, hovered bool) {
	p := a.Placement
	n := p.Normal()

	frameStyle := renderer.Style{Color: colorFrame}
	if hovered {
		frameStyle.Highlight = hoverStrength
	}
	r.DrawBox(placed(p.Position, p.RotationY,
		mgl32.Vec3{gallery.FrameWidth, gallery.FrameHeight, gallery.FrameDepth}), frameStyle)

	// Fit the image inside the frame keeping its aspect ratio.
	maxW := float32(gallery.FrameWidth * gallery.ImageScale)
	maxH := float32(gallery.FrameHeight * gallery.ImageScale)
	w, h := maxW, maxH
	canvas := renderer.Style{Color: colorCanvas}
	if tex := a.Material().Texture; tex != nil && tex.Width > 0 && tex.Height > 0 {
		canvas.Texture = tex.ID
		s := min(maxW/float32(tex.Width), maxH/float32(tex.Height))
		w, h = float32(tex.Width)*s, float32(tex.Height)*s
	}
	front := p.Position.Add(n.Mul(gallery.FrameDepth/2 + 0.002))
	r.DrawQuad(placed(front, p.RotationY, mgl32.Vec3{w, h, 1}), canvas)

	_, _, panel := p.Meshes()
	r.DrawBox(placed(panel.Center(), p.RotationY,
		mgl32.Vec3{gallery.PanelSize, gallery.PanelSize, 0.02}), renderer.Style{Color: colorPanel})
}
