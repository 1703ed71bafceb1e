// Package camera provides the first-person camera used to walk the gallery.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// FirstPerson is an eye-height camera controlled by yaw and pitch.
//
// Yaw 0 looks down -Z; positive yaw turns left. Pitch is positive when
// looking up.
type FirstPerson struct {
	Position mgl32.Vec3
	Yaw      float32 // radians
	Pitch    float32 // radians

	FovY float32 // vertical field of view, degrees
	Near float32
	Far  float32

	// Constraints
	MinPitch float32
	MaxPitch float32

	// Sensitivity
	LookSensitivity float32 // radians per pixel of mouse motion

	width  int
	height int
}

// NewFirstPerson creates a camera at position with a 75° field of view.
func NewFirstPerson(position mgl32.Vec3) *FirstPerson {
	return &FirstPerson{
		Position:        position,
		FovY:            75,
		Near:            0.1,
		Far:             1000,
		MinPitch:        -gomath.Pi/2 + 0.01,
		MaxPitch:        gomath.Pi/2 - 0.01,
		LookSensitivity: 0.002,
		width:           1,
		height:          1,
	}
}

// Forward returns the unit view direction.
func (c *FirstPerson) Forward() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	sp, cp := sincos(c.Pitch)
	return mgl32.Vec3{-sy * cp, sp, -cy * cp}
}

// FlatForward returns the view direction projected onto the floor.
func (c *FirstPerson) FlatForward() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{-sy, 0, -cy}
}

// Right returns the unit right vector on the floor plane.
func (c *FirstPerson) Right() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{cy, 0, -sy}
}

// Look turns the camera by a relative mouse motion in pixels.
func (c *FirstPerson) Look(dx, dy float32) {
	c.Yaw -= dx * c.LookSensitivity
	c.Pitch -= dy * c.LookSensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPerson) ViewMatrix() mgl32.Mat4 {
	eye := c.Position
	center := eye.Add(c.Forward())
	return mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection for the current viewport.
func (c *FirstPerson) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * ViewMatrix.
func (c *FirstPerson) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.ViewMatrix())
}

// Resize sets the viewport in pixels. The aspect ratio follows from it.
func (c *FirstPerson) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width, c.height = width, height
}

// Viewport returns the viewport size in pixels.
func (c *FirstPerson) Viewport() (width, height int) {
	return c.width, c.height
}

// Aspect returns width / height of the viewport.
func (c *FirstPerson) Aspect() float32 {
	return float32(c.width) / float32(c.height)
}

// DistanceTo returns the distance from the camera to p.
func (c *FirstPerson) DistanceTo(p mgl32.Vec3) float32 {
	return c.Position.Sub(p).Len()
}

func sincos(a float32) (float32, float32) {
	s, co := gomath.Sincos(float64(a))
	return float32(s), float32(co)
}
