package ui2d

// Color is an RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Overlay palette.
var (
	ColorWhite = Color{1, 1, 1, 1}

	ColorBackdrop     = Color{0, 0, 0, 0.75}
	ColorCard         = Color{0.1, 0.09, 0.08, 0.98}
	ColorCardBorder   = Color{0.55, 0.45, 0.3, 1}
	ColorImageWell    = Color{0.03, 0.03, 0.03, 1}
	ColorButtonNormal = Color{0.2, 0.18, 0.16, 1}
	ColorFocusRing    = Color{0.95, 0.78, 0.35, 1}
	ColorText         = Color{0.93, 0.9, 0.85, 1}
	ColorTextDim      = Color{0.65, 0.6, 0.55, 1}
	ColorCrosshair    = Color{1, 1, 1, 0.8}
)

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Darken returns a darker version of the color.
func (c Color) Darken(factor float32) Color {
	return Color{
		R: c.R * (1 - factor),
		G: c.G * (1 - factor),
		B: c.B * (1 - factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}
