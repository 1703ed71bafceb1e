// Package ui2d draws the screen-space overlay: the crosshair, hover label and
// the artwork detail modal.
package ui2d

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gallery/internal/engine/shader"
)

// Draw modes understood by the overlay fragment shader.
const (
	modeSolid int32 = iota
	modeGlyph
	modeImage
)

// Vertex format: pos(2) + uv(2) + color(4) = 8 floats.
const floatsPerVertex = 8

type batch struct {
	mode    int32
	texture uint32
	first   int32
	count   int32
	clip    *Rect
}

// Rect is a screen rectangle in pixels, origin top left.
type Rect struct {
	X, Y, W, H float32
}

// Renderer batches 2D quads and flushes them at End.
type Renderer struct {
	screenWidth  int
	screenHeight int

	program *shader.Program
	vao     uint32
	vbo     uint32

	vertices []float32
	batches  []batch
	clip     *Rect

	font *Font
}

// New creates an overlay renderer. Requires a current GL context.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{
		screenWidth:  width,
		screenHeight: height,
		vertices:     make([]float32, 0, 4096),
	}

	var err error
	r.program, err = shader.New(shader.OverlayVertex, shader.OverlayFragment, "uProjection", "uMode", "uTexture")
	if err != nil {
		return nil, fmt.Errorf("create overlay shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.font, err = NewFont()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("create font: %w", err)
	}
	return r, nil
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// Font returns the overlay font.
func (r *Renderer) Font() *Font { return r.font }

// Begin starts a new overlay frame.
func (r *Renderer) Begin() {
	r.vertices = r.vertices[:0]
	r.batches = r.batches[:0]
	r.clip = nil
}

// End renders every queued quad over the current frame.
func (r *Renderer) End() {
	if len(r.batches) == 0 {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)

	proj := mgl32.Ortho(0, float32(r.screenWidth), float32(r.screenHeight), 0, -1, 1)
	r.program.Use()
	gl.UniformMatrix4fv(r.program.Loc("uProjection"), 1, false, &proj[0])
	gl.Uniform1i(r.program.Loc("uTexture"), 0)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertices)*4, gl.Ptr(r.vertices), gl.STREAM_DRAW)

	gl.ActiveTexture(gl.TEXTURE0)
	for _, b := range r.batches {
		if b.clip != nil {
			gl.Enable(gl.SCISSOR_TEST)
			// GL scissor origin is bottom left.
			gl.Scissor(int32(b.clip.X), int32(float32(r.screenHeight)-b.clip.Y-b.clip.H), int32(b.clip.W), int32(b.clip.H))
		} else {
			gl.Disable(gl.SCISSOR_TEST)
		}
		gl.Uniform1i(r.program.Loc("uMode"), b.mode)
		gl.BindTexture(gl.TEXTURE_2D, b.texture)
		gl.DrawArrays(gl.TRIANGLES, b.first, b.count)
	}

	gl.Disable(gl.SCISSOR_TEST)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.font != nil {
		r.font.Close()
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// PushClip restricts subsequent quads to rect until PopClip.
func (r *Renderer) PushClip(rect Rect) {
	r.clip = &rect
}

// PopClip removes the clip rectangle.
func (r *Renderer) PopClip() {
	r.clip = nil
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, color Color) {
	r.addQuad(modeSolid, 0, x, y, width, height, 0, 0, 1, 1, color)
}

// DrawRectOutline draws a rectangle outline.
func (r *Renderer) DrawRectOutline(x, y, width, height, thickness float32, color Color) {
	r.DrawRect(x, y, width, thickness, color)
	r.DrawRect(x, y+height-thickness, width, thickness, color)
	r.DrawRect(x, y+thickness, thickness, height-thickness*2, color)
	r.DrawRect(x+width-thickness, y+thickness, thickness, height-thickness*2, color)
}

// DrawPanel draws a panel with border.
func (r *Renderer) DrawPanel(x, y, width, height float32, bg, border Color) {
	r.DrawRect(x, y, width, height, bg)
	r.DrawRectOutline(x, y, width, height, 1, border)
}

// DrawImage draws texture into the rectangle.
func (r *Renderer) DrawImage(texture uint32, x, y, width, height float32) {
	if texture == 0 {
		return
	}
	r.addQuad(modeImage, texture, x, y, width, height, 0, 0, 1, 1, ColorWhite)
}

// DrawText draws text with its top-left corner at (x, y).
func (r *Renderer) DrawText(x, y float32, text string, scale float32, color Color) {
	if r.font == nil {
		return
	}
	gw, gh := r.font.GlyphSize()
	charW := float32(gw) * scale
	charH := float32(gh) * scale

	curX := x
	for _, ch := range text {
		if ch == '\n' {
			curX = x
			y += charH
			continue
		}
		u0, v0, u1, v1 := r.font.GlyphUV(ch)
		r.addQuad(modeGlyph, r.font.TextureID(), curX, y, charW, charH, u0, v0, u1, v1, color)
		curX += charW
	}
}

// MeasureText returns the width and height of rendered text.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	if r.font == nil {
		return 0, 0
	}
	return r.font.MeasureText(text, scale)
}

func (r *Renderer) addQuad(mode int32, tex uint32, x, y, w, h, u0, v0, u1, v1 float32, c Color) {
	first := int32(len(r.vertices) / floatsPerVertex)
	r.vertices = append(r.vertices,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)

	if n := len(r.batches); n > 0 {
		last := &r.batches[n-1]
		if last.mode == mode && last.texture == tex && last.clip == r.clip {
			last.count += 6
			return
		}
	}
	r.batches = append(r.batches, batch{mode: mode, texture: tex, first: first, count: 6, clip: r.clip})
}
