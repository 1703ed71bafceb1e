package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Vertex format: pos(3) + normal(3) + uv(2) = 8 floats, 32 bytes.
const floatsPerVertex = 8

type mesh struct {
	vao, vbo uint32
	count    int32
}

func newMesh(vertices []float32) mesh {
	var m mesh
	m.count = int32(len(vertices) / floatsPerVertex)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func (m mesh) draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.count)
}

func (m *mesh) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	*m = mesh{}
}

// quadVertices is a unit square in the XY plane facing +Z. v runs from 0 at
// the top edge to 1 at the bottom so image rows map top-down.
func quadVertices() []float32 {
	return []float32{
		-0.5, -0.5, 0, 0, 0, 1, 0, 1,
		0.5, -0.5, 0, 0, 0, 1, 1, 1,
		0.5, 0.5, 0, 0, 0, 1, 1, 0,
		-0.5, -0.5, 0, 0, 0, 1, 0, 1,
		0.5, 0.5, 0, 0, 0, 1, 1, 0,
		-0.5, 0.5, 0, 0, 0, 1, 0, 0,
	}
}

// cubeVertices is a unit cube centred on the origin.
func cubeVertices() []float32 {
	type face struct {
		n    [3]float32
		u, v [3]float32 // in-plane axes
	}
	faces := []face{
		{n: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
		{n: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	}
	corners := [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, -1}, {1, 1}, {-1, 1}}

	out := make([]float32, 0, len(faces)*6*floatsPerVertex)
	for _, f := range faces {
		for _, c := range corners {
			var p [3]float32
			for i := range p {
				p[i] = 0.5*f.n[i] + 0.5*c[0]*f.u[i] + 0.5*c[1]*f.v[i]
			}
			out = append(out,
				p[0], p[1], p[2],
				f.n[0], f.n[1], f.n[2],
				(c[0]+1)/2, (1-c[1])/2,
			)
		}
	}
	return out
}
