package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

// vecNear uses an absolute per-component tolerance; components that should
// be zero come out of sin/cos as small non-zero values.
func vecNear(a, b mgl32.Vec3) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestBasis(t *testing.T) {
	tests := []struct {
		name    string
		yaw     float32
		forward mgl32.Vec3
		right   mgl32.Vec3
	}{
		{"yaw 0", 0, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0}},
		{"yaw 90", gomath.Pi / 2, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{"yaw 180", gomath.Pi, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFirstPerson(mgl32.Vec3{})
			c.Yaw = tt.yaw
			if got := c.FlatForward(); !vecNear(got, tt.forward) {
				t.Errorf("FlatForward = %v, want %v", got, tt.forward)
			}
			if got := c.Right(); !vecNear(got, tt.right) {
				t.Errorf("Right = %v, want %v", got, tt.right)
			}
		})
	}
}

func TestForwardWithPitch(t *testing.T) {
	c := NewFirstPerson(mgl32.Vec3{})
	c.Pitch = gomath.Pi / 4
	f := c.Forward()
	if gomath.Abs(float64(f.Len()-1)) > eps {
		t.Errorf("|Forward| = %v, want 1", f.Len())
	}
	if f.Y() <= 0 {
		t.Errorf("Forward.Y = %v, want positive when looking up", f.Y())
	}
	if flat := c.FlatForward(); flat.Y() != 0 {
		t.Errorf("FlatForward.Y = %v, want 0", flat.Y())
	}
}

func TestLookClampsPitch(t *testing.T) {
	c := NewFirstPerson(mgl32.Vec3{})
	c.Look(0, -1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want MaxPitch %v", c.Pitch, c.MaxPitch)
	}
	c.Look(0, 1e6)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v, want MinPitch %v", c.Pitch, c.MinPitch)
	}

	c.Yaw = 0
	c.Look(100, 0)
	if c.Yaw >= 0 {
		t.Errorf("moving the mouse right should turn right (yaw decreases), got %v", c.Yaw)
	}
}

func TestResize(t *testing.T) {
	c := NewFirstPerson(mgl32.Vec3{})
	c.Resize(1600, 900)
	if w, h := c.Viewport(); w != 1600 || h != 900 {
		t.Errorf("Viewport = %dx%d", w, h)
	}
	if got, want := c.Aspect(), float32(1600.0/900.0); gomath.Abs(float64(got-want)) > eps {
		t.Errorf("Aspect = %v, want %v", got, want)
	}

	c.Resize(0, 0)
	if w, h := c.Viewport(); w != 1 || h != 1 {
		t.Errorf("zero size clamps to 1x1, got %dx%d", w, h)
	}
}

func TestViewMatrixLooksForward(t *testing.T) {
	c := NewFirstPerson(mgl32.Vec3{0, 1.6, 20})
	c.Resize(800, 600)

	// A point straight ahead projects to the centre of the screen.
	p := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 1.6, 10, 1})
	ndc := p.Vec3().Mul(1 / p.W())
	if gomath.Abs(float64(ndc.X())) > 1e-4 || gomath.Abs(float64(ndc.Y())) > 1e-4 {
		t.Errorf("ndc = %v, want centre", ndc)
	}
	if c.DistanceTo(mgl32.Vec3{0, 1.6, 10}) != 10 {
		t.Errorf("DistanceTo = %v, want 10", c.DistanceTo(mgl32.Vec3{0, 1.6, 10}))
	}
}
