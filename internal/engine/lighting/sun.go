// Package lighting provides the directional light used for the gallery room.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light. Longitude turns around Y from +Z (degrees),
// latitude is the elevation above the horizon (degrees).
type Sun struct {
	Longitude float32
	Latitude  float32
	Ambient   float32 // 0..1, light reaching faces turned away from the sun
}

// DefaultSun lights the hall from high above and slightly to the side.
func DefaultSun() Sun {
	return Sun{Longitude: 56, Latitude: 70, Ambient: 0.5}
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction() mgl32.Vec3 {
	return SunDirection(s.Longitude, s.Latitude)
}

// SunDirection converts longitude/latitude angles to a light direction.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(longitude))
	lat := float64(mgl32.DegToRad(latitude))

	x := float32(math.Cos(lat) * math.Sin(lon))
	y := float32(math.Sin(lat))
	z := float32(math.Cos(lat) * math.Cos(lon))

	return mgl32.Vec3{x, y, z}
}

// Clamped returns s with Ambient forced into [0, 1] and Latitude into
// [-90, 90].
func (s Sun) Clamped() Sun {
	s.Ambient = mgl32.Clamp(s.Ambient, 0, 1)
	s.Latitude = mgl32.Clamp(s.Latitude, -90, 90)
	return s
}
