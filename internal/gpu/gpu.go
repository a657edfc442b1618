// Package gpu defines the upload/draw contract the meshing engine hands its
// output to, plus a reference OpenGL implementation. The engine itself only
// produces MeshData; every call in this package belongs on the render thread
// that owns the graphics context.
package gpu

import (
	"voxelmesh/internal/meshing"
)

// Handle identifies one uploaded mesh. It aliases uint64 so backends also
// satisfy the cache's meshing.Uploader contract.
type Handle = uint64

// Uploader is implemented by render backends.
type Uploader interface {
	Upload(m *meshing.MeshData) (Handle, error)
	Release(h Handle)
	Draw(h Handle)

	// Capacity returns the bytes left in the upload budget. Callers size
	// their streaming against this instead of poking at backend internals.
	Capacity() int
}
