package gpu

import (
	"fmt"

	"voxelmesh/internal/logger"
	"voxelmesh/internal/meshing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

const defaultBudgetBytes = 256 * 1024 * 1024

type glMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	bytes      int
}

// GLUploader is the reference OpenGL backend. All methods assume a current
// GL context on the calling thread.
type GLUploader struct {
	meshes         map[Handle]*glMesh
	next           Handle
	allocatedBytes int
	maxBytes       int
}

// NewGLUploader creates an uploader with the given byte budget for vertex
// and index storage; 0 means the default 256MB.
func NewGLUploader(maxBytes int) *GLUploader {
	if maxBytes <= 0 {
		maxBytes = defaultBudgetBytes
	}
	return &GLUploader{
		meshes:   make(map[Handle]*glMesh),
		next:     1,
		maxBytes: maxBytes,
	}
}

// Upload copies a mesh into GPU buffers and returns its handle.
func (u *GLUploader) Upload(m *meshing.MeshData) (Handle, error) {
	size := len(m.Vertices) + len(m.Indices)*4
	if u.allocatedBytes+size > u.maxBytes {
		return 0, fmt.Errorf("gpu: upload budget exceeded (%d+%d/%d bytes)", u.allocatedBytes, size, u.maxBytes)
	}

	gm := &glMesh{indexCount: int32(len(m.Indices)), bytes: size}
	gl.GenVertexArrays(1, &gm.vao)
	gl.GenBuffers(1, &gm.vbo)
	gl.GenBuffers(1, &gm.ebo)

	gl.BindVertexArray(gm.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices), gl.Ptr(m.Vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	setupVertexAttribs(m.Layout)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	glCheckError("upload")

	h := u.next
	u.next++
	u.meshes[h] = gm
	u.allocatedBytes += size
	return h, nil
}

func setupVertexAttribs(layout meshing.VertexLayout) {
	stride := int32(layout.Stride())
	switch layout {
	case meshing.LayoutCompact:
		// position: 3 shorts, offset 0
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.SHORT, false, stride, gl.PtrOffset(0))
		// normal index: 1 byte, offset 6 (pad at 7)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribIPointer(1, 1, gl.UNSIGNED_BYTE, stride, gl.PtrOffset(6))
		// uv: 2 unsigned shorts normalized back to [0,1], offset 8
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointer(2, 2, gl.UNSIGNED_SHORT, true, stride, gl.PtrOffset(8))
	default:
		// position, normal, tangent, bitangent: 3 floats each; uv: 2 floats
		offsets := []int{0, 12, 24, 36}
		for i, off := range offsets {
			gl.EnableVertexAttribArray(uint32(i))
			gl.VertexAttribPointer(uint32(i), 3, gl.FLOAT, false, stride, gl.PtrOffset(off))
		}
		gl.EnableVertexAttribArray(4)
		gl.VertexAttribPointer(4, 2, gl.FLOAT, false, stride, gl.PtrOffset(48))
	}
}

// Release frees the mesh's GPU buffers.
func (u *GLUploader) Release(h Handle) {
	gm := u.meshes[h]
	if gm == nil {
		return
	}
	gl.DeleteBuffers(1, &gm.vbo)
	gl.DeleteBuffers(1, &gm.ebo)
	gl.DeleteVertexArrays(1, &gm.vao)
	u.allocatedBytes -= gm.bytes
	delete(u.meshes, h)
}

// Draw issues the indexed draw call for an uploaded mesh.
func (u *GLUploader) Draw(h Handle) {
	gm := u.meshes[h]
	if gm == nil {
		return
	}
	gl.BindVertexArray(gm.vao)
	gl.DrawElements(gl.TRIANGLES, gm.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Capacity returns the bytes left in the upload budget.
func (u *GLUploader) Capacity() int {
	return u.maxBytes - u.allocatedBytes
}

func glCheckError(label string) {
	if err := gl.GetError(); err != gl.NO_ERROR {
		logger.Log.Warn("gl error", zap.String("label", label), zap.Uint32("code", err))
	}
}
