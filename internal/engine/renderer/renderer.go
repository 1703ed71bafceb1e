// Package renderer draws the gallery room with OpenGL and owns GPU textures.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/engine/lighting"
	"github.com/Faultbox/midgard-gallery/internal/engine/shader"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	Sun    lighting.Sun
	Logger *zap.Logger
}

// Renderer handles all 3D drawing. It must be created after the GL context
// and used only from the goroutine that owns that context.
type Renderer struct {
	config Config
	log    *zap.Logger
	sun    lighting.Sun

	program *shader.Program
	cube    mesh
	quad    mesh

	textures map[uint32]int64 // live texture ids and their byte size
	texBytes int64
}

// Style selects how a mesh is shaded.
type Style struct {
	Color     mgl32.Vec4
	Texture   uint32 // 0 draws Color
	Highlight float32
}

// New creates a renderer.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		log:      logger.Or(cfg.Logger, "renderer"),
		sun:      cfg.Sun.Clamped(),
		textures: make(map[uint32]int64),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.05, 0.05, 0.07, 1.0)

	var err error
	r.program, err = shader.New(shader.SceneVertex, shader.SceneFragment,
		"uViewProj", "uModel", "uColor", "uTextured", "uTexture", "uEye", "uHighlight",
		"uLightDir", "uAmbient")
	if err != nil {
		return nil, fmt.Errorf("failed to create scene shader: %w", err)
	}

	r.cube = newMesh(cubeVertices())
	r.quad = newMesh(quadVertices())
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases every GL object the renderer created, including textures
// that were never released.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("live_textures", len(r.textures)))
	for id := range r.textures {
		tex := id
		gl.DeleteTextures(1, &tex)
	}
	clear(r.textures)
	r.cube.delete()
	r.quad.delete()
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin clears the frame and sets the camera for subsequent draws.
func (r *Renderer) Begin(viewProj mgl32.Mat4, eye mgl32.Vec3) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Loc("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform3f(r.program.Loc("uEye"), eye.X(), eye.Y(), eye.Z())
	gl.Uniform1i(r.program.Loc("uTexture"), 0)
	dir := r.sun.Direction()
	gl.Uniform3f(r.program.Loc("uLightDir"), dir.X(), dir.Y(), dir.Z())
	gl.Uniform1f(r.program.Loc("uAmbient"), r.sun.Ambient)
}

// ReadPixels reads back the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// End finishes the 3D pass.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

// DrawBox draws a unit cube centred on the origin transformed by model.
func (r *Renderer) DrawBox(model mgl32.Mat4, s Style) {
	r.draw(r.cube, model, s)
}

// DrawQuad draws a unit square in the XY plane facing +Z, with texture
// coordinates running left to right and top to bottom.
func (r *Renderer) DrawQuad(model mgl32.Mat4, s Style) {
	r.draw(r.quad, model, s)
}

func (r *Renderer) draw(m mesh, model mgl32.Mat4, s Style) {
	gl.UniformMatrix4fv(r.program.Loc("uModel"), 1, false, &model[0])
	gl.Uniform4f(r.program.Loc("uColor"), s.Color.X(), s.Color.Y(), s.Color.Z(), s.Color.W())
	gl.Uniform1f(r.program.Loc("uHighlight"), s.Highlight)
	if s.Texture != 0 {
		gl.Uniform1i(r.program.Loc("uTextured"), 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, s.Texture)
	} else {
		gl.Uniform1i(r.program.Loc("uTextured"), 0)
	}
	m.draw()
}

// Upload creates a mipmapped GL texture from img.
func (r *Renderer) Upload(img *image.RGBA) (uint32, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("upload: empty image")
	}

	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("upload: glGenTextures returned 0")
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return 0, fmt.Errorf("upload: GL error 0x%x", e)
	}

	size := int64(b.Dx()) * int64(b.Dy()) * 4
	r.textures[id] = size
	r.texBytes += size
	return id, nil
}

// Release deletes a texture created by Upload.
func (r *Renderer) Release(id uint32) {
	size, ok := r.textures[id]
	if !ok {
		return
	}
	delete(r.textures, id)
	r.texBytes -= size
	gl.DeleteTextures(1, &id)
}

// TextureStats reports the number of live textures and their size in bytes.
func (r *Renderer) TextureStats() (count int, bytes int64) {
	return len(r.textures), r.texBytes
}
