package shader

import _ "embed"

// SceneVertex transforms room geometry.
//
//go:embed scene.vert
var SceneVertex string

// SceneFragment lights room geometry and samples the artwork texture.
//
//go:embed scene.frag
var SceneFragment string

// OverlayVertex places screen-space quads.
//
//go:embed overlay.vert
var OverlayVertex string

// OverlayFragment shades solid, glyph and image quads.
//
//go:embed overlay.frag
var OverlayFragment string
