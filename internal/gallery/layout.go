package gallery

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gallery/internal/engine/picking"
)

// Frame and label dimensions, in world units.
const (
	FrameWidth  = 2.0
	FrameHeight = 2.5
	FrameDepth  = 0.1
	ImageScale  = 0.9 // image size relative to the frame
	PanelSize   = 0.5
	panelGap    = 0.1
	panelLift   = 0.2
	columnHalf  = 0.25
)

// Side is the wall an artwork hangs on.
type Side int

const (
	Left  Side = iota // x < 0
	Right             // x > 0
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Layout describes the room and where artworks hang.
type Layout struct {
	HalfWidth     float32
	Length        float32
	WallHeight    float32
	Spacing       float32 // distance between neighbouring artworks along z
	CenterHeight  float32 // height of the frame centre
	WallInset     float32 // gap between the wall and the frame centre
	ColumnSpacing float32
}

// Placement is the pose of one artwork.
type Placement struct {
	Index     int
	Side      Side
	Position  mgl32.Vec3 // frame centre
	RotationY float32    // radians; the frame faces the aisle
}

// Normal is the direction the artwork faces.
func (p Placement) Normal() mgl32.Vec3 {
	if p.Side == Left {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{-1, 0, 0}
}

// Place returns the pose of artwork i out of n. Sides alternate starting on
// the left, and the row is centred on z = 0.
func (l Layout) Place(i, n int) Placement {
	z := (float32(i) - float32(n-1)/2) * l.Spacing
	x := l.HalfWidth - l.WallInset
	side := Left
	rot := float32(gomath.Pi / 2)
	if i%2 == 1 {
		side = Right
		rot = -rot
	} else {
		x = -x
	}
	return Placement{
		Index:     i,
		Side:      side,
		Position:  mgl32.Vec3{x, l.CenterHeight, z},
		RotationY: rot,
	}
}

// Meshes returns the pickable boxes of an artwork: frame, image and the info
// panel beside it.
func (p Placement) Meshes() (frame, image, panel picking.AABB) {
	n := p.Normal()
	c := p.Position

	frame = picking.BoxAround(c, mgl32.Vec3{FrameDepth / 2, FrameHeight / 2, FrameWidth / 2})

	imgCentre := c.Add(n.Mul(FrameDepth/2 + 0.001))
	image = picking.BoxAround(imgCentre, mgl32.Vec3{0.005, FrameHeight * ImageScale / 2, FrameWidth * ImageScale / 2})

	panelCentre := mgl32.Vec3{c.X(), c.Y() + panelLift, c.Z() + FrameWidth/2 + PanelSize/2 + panelGap}
	panel = picking.BoxAround(panelCentre, mgl32.Vec3{0.005, PanelSize / 2, PanelSize / 2})
	return frame, image, panel
}

// Walls returns the occluding boxes of the room: both long walls and the two
// end walls.
func (l Layout) Walls() []picking.AABB {
	const t = 0.05
	hw, hl, h := l.HalfWidth, l.Length/2, l.WallHeight
	return []picking.AABB{
		picking.NewAABB(mgl32.Vec3{-hw - t, 0, -hl}, mgl32.Vec3{-hw - 2*t, h, hl}),
		picking.NewAABB(mgl32.Vec3{hw + t, 0, -hl}, mgl32.Vec3{hw + 2*t, h, hl}),
		picking.NewAABB(mgl32.Vec3{-hw, 0, -hl - t}, mgl32.Vec3{hw, h, -hl - 2*t}),
		picking.NewAABB(mgl32.Vec3{-hw, 0, hl + t}, mgl32.Vec3{hw, h, hl + 2*t}),
	}
}

// Columns returns the boxes of the columns along both walls for a row of n
// artworks. Columns sit halfway between artwork positions and repeat every
// ColumnSpacing to the ends of the room.
func (l Layout) Columns(n int) []picking.AABB {
	if l.ColumnSpacing <= 0 {
		return nil
	}
	hl := l.Length / 2
	first := -float32(n-1)/2*l.Spacing - l.Spacing/2
	for first-l.ColumnSpacing > -hl {
		first -= l.ColumnSpacing
	}

	var out []picking.AABB
	x := l.HalfWidth - columnHalf
	for z := first; z < hl; z += l.ColumnSpacing {
		if z <= -hl {
			continue
		}
		for _, xx := range []float32{-x, x} {
			out = append(out, picking.BoxAround(
				mgl32.Vec3{xx, l.WallHeight / 2, z},
				mgl32.Vec3{columnHalf, l.WallHeight / 2, columnHalf},
			))
		}
	}
	return out
}
