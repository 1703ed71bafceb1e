package ui2d

import (
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const atlasColumns = 16

// Font is a fixed-width bitmap font baked into a single alpha texture.
type Font struct {
	textureID     uint32
	glyphW        int
	glyphH        int
	atlasW        int
	atlasH        int
	cells         map[rune]int
	fallbackIndex int
}

// glyphRunes are the characters baked into the atlas: printable ASCII and
// Latin-1, which covers the catalogue's Spanish text.
func glyphRunes() []rune {
	var rs []rune
	for r := rune(0x20); r < 0x7f; r++ {
		rs = append(rs, r)
	}
	for r := rune(0xa1); r <= 0xff; r++ {
		rs = append(rs, r)
	}
	return append(rs, '?')
}

// BakeAtlas renders the glyph set of face into an alpha image laid out in
// atlasColumns columns.
func BakeAtlas(face *basicfont.Face) (*image.Alpha, map[rune]int) {
	runes := glyphRunes()
	w, h := face.Advance, face.Height
	rows := (len(runes) + atlasColumns - 1) / atlasColumns
	atlas := image.NewAlpha(image.Rect(0, 0, w*atlasColumns, h*rows))
	cells := make(map[rune]int, len(runes))

	d := &font.Drawer{Dst: atlas, Src: image.Opaque, Face: face}
	for i, r := range runes {
		if _, ok := cells[r]; ok {
			continue
		}
		cx, cy := (i%atlasColumns)*w, (i/atlasColumns)*h
		cell := image.Rect(cx, cy, cx+w, cy+h)
		draw.Draw(atlas, cell, image.Transparent, image.Point{}, draw.Src)
		d.Dot = fixed.P(cx, cy+face.Ascent)
		d.DrawString(string(r))
		cells[r] = i
	}
	return atlas, cells
}

// NewFont bakes the 7x13 basic font and uploads it.
func NewFont() (*Font, error) {
	face := basicfont.Face7x13
	atlas, cells := BakeAtlas(face)

	f := &Font{
		glyphW:        face.Advance,
		glyphH:        face.Height,
		atlasW:        atlas.Rect.Dx(),
		atlasH:        atlas.Rect.Dy(),
		cells:         cells,
		fallbackIndex: cells['?'],
	}

	gl.GenTextures(1, &f.textureID)
	gl.BindTexture(gl.TEXTURE_2D, f.textureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(f.atlasW), int32(f.atlasH), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
	// The shader reads alpha; route the single channel there.
	swizzle := []int32{gl.ONE, gl.ONE, gl.ONE, gl.RED}
	gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &swizzle[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return f, nil
}

// TextureID returns the atlas texture.
func (f *Font) TextureID() uint32 { return f.textureID }

// GlyphSize returns the size of one glyph cell in pixels.
func (f *Font) GlyphSize() (int, int) { return f.glyphW, f.glyphH }

// GlyphUV returns the atlas coordinates of r, or of '?' when r is missing.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	i, ok := f.cells[r]
	if !ok {
		i = f.fallbackIndex
	}
	x := (i % atlasColumns) * f.glyphW
	y := (i / atlasColumns) * f.glyphH
	u0 = float32(x) / float32(f.atlasW)
	v0 = float32(y) / float32(f.atlasH)
	u1 = float32(x+f.glyphW) / float32(f.atlasW)
	v1 = float32(y+f.glyphH) / float32(f.atlasH)
	return
}

// MeasureText returns the size of text at scale, honouring newlines.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}

// Close deletes the atlas texture.
func (f *Font) Close() {
	if f.textureID != 0 {
		gl.DeleteTextures(1, &f.textureID)
		f.textureID = 0
	}
}
