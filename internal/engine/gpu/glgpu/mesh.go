package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
)

// mesh is a VAO with its vertex and index buffers.
type mesh struct {
	vao, vbo, ebo uint32
	mode          uint32
	count         int32
	indexed       bool
	floats        int
}

func (m *mesh) Release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}

func (d *Device) NewMesh(desc gpu.MeshDesc) (gpu.Mesh, error) {
	if desc.Stride <= 0 || len(desc.Vertices) == 0 {
		return nil, fmt.Errorf("%w: mesh %q has no vertices", gpu.ErrResourceCreation, desc.Label)
	}

	m := &mesh{mode: gl.TRIANGLES, floats: len(desc.Vertices)}
	if desc.Topology == gpu.Lines {
		m.mode = gl.LINES
	}
	usage := uint32(gl.STATIC_DRAW)
	if desc.Dynamic {
		usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices)*4, gl.Ptr(desc.Vertices), usage)

	stride := int32(desc.Stride * 4)
	for _, a := range desc.Attribs {
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, stride, uintptr(a.Offset*4))
		gl.EnableVertexAttribArray(a.Location)
	}

	if len(desc.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*4, gl.Ptr(desc.Indices), gl.STATIC_DRAW)
		m.indexed = true
		m.count = int32(len(desc.Indices))
	} else {
		m.count = int32(len(desc.Vertices) / desc.Stride)
	}

	gl.BindVertexArray(0)
	return m, nil
}

func (d *Device) UpdateMesh(gm gpu.Mesh, vertices []float32) error {
	m, ok := gm.(*mesh)
	if !ok || m.vao == 0 {
		return fmt.Errorf("update mesh: not a live GL mesh")
	}
	if len(vertices) != m.floats {
		return fmt.Errorf("update mesh: vertex count changed from %d to %d floats", m.floats, len(vertices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (m *mesh) draw() {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(m.mode, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
	gl.BindVertexArray(0)
}
